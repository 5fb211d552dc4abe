package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/auth"
)

// validate holds the shared validator instance; struct validation rules live
// on the DTO tags.
var validate = validator.New()

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON encodes the payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP status codes. Errors outside the
// workflow taxonomy surface as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
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
		writeJSON(w, status, errorResponse{
			Error:   appErr.Kind.String(),
			Message: appErr.Msg,
		})
		return
	}

	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "internal",
		Message: "internal server error",
	})
}

// decodeBody decodes and tag-validates a JSON request body.
func decodeBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperror.Validationf("invalid request body: %v", err)
	}
	defer r.Body.Close()

	if err := validate.Struct(dest); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validator rejected request type: %w", err)
		}
		return apperror.Validationf("invalid request body: %v", err)
	}
	return nil
}

// actorFrom resolves the authenticated user attached by the auth middleware.
func actorFrom(r *http.Request) (*model.User, error) {
	authCtx := auth.GetAuthContext(r.Context())
	if authCtx == nil || authCtx.User == nil {
		return nil, apperror.Forbiddenf("authentication required")
	}
	return authCtx.User, nil
}
