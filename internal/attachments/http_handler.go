package attachments

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/auth"
)

// maxUploadMemory bounds the in-memory part of multipart parsing (32MB).
const maxUploadMemory = 32 << 20

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register wires the attachment endpoints onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/containers/{containerID}/attachments", h.HandleUpload)
	mux.HandleFunc("GET /api/containers/{containerID}/attachments", h.HandleList)
	mux.HandleFunc("GET /api/attachments/{kind}/{file}", h.HandleDownload)
}

// HandleUpload handles POST /api/containers/{containerID}/attachments requests
// Multipart form fields: file (required), kind (defaults to photo)
func (h *HTTPHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.GetAuthContext(r.Context())
	if authCtx == nil || authCtx.User == nil {
		h.writeError(w, apperror.Forbiddenf("authentication required"))
		return
	}

	containerID, err := uuid.Parse(r.PathValue("containerID"))
	if err != nil {
		h.writeError(w, apperror.Validationf("invalid containerID: %v", err))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.writeError(w, apperror.Validationf("failed to parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, apperror.Validationf("file is required"))
		return
	}
	defer file.Close()

	kind := Kind(r.FormValue("kind"))
	if kind == "" {
		kind = KindPhoto
	}

	attachment, err := h.service.Upload(r.Context(), authCtx.User, &containerID, kind,
		header.Filename, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(attachment); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// HandleList handles GET /api/containers/{containerID}/attachments requests
func (h *HTTPHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	containerID, err := uuid.Parse(r.PathValue("containerID"))
	if err != nil {
		h.writeError(w, apperror.Validationf("invalid containerID: %v", err))
		return
	}

	records, err := h.service.ListForContainer(r.Context(), containerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// HandleDownload handles GET /api/attachments/{kind}/{file} requests. The two
// path segments together form the blob key.
func (h *HTTPHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	file := r.PathValue("file")
	if kind == "" || file == "" {
		h.writeError(w, apperror.Validationf("attachment key is required"))
		return
	}
	key := kind + "/" + file

	reader, contentType, err := h.service.Download(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, reader); err != nil {
		slog.ErrorContext(r.Context(), "failed to stream attachment", "key", key, "error", err)
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		message = appErr.Msg
		switch appErr.Kind {
		case apperror.KindValidation:
			status = http.StatusBadRequest
		case apperror.KindForbidden:
			status = http.StatusForbidden
		case apperror.KindNotFound:
			status = http.StatusNotFound
		case apperror.KindConflict:
			status = http.StatusConflict
		}
	} else {
		slog.Error("attachment request failed", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
