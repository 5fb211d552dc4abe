package router

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/approval/service"
)

type ContainerRouter struct {
	cs *service.ContainerService
}

func NewContainerRouter(cs *service.ContainerService) *ContainerRouter {
	return &ContainerRouter{cs: cs}
}

// Register wires the container endpoints onto the mux.
func (cr *ContainerRouter) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/containers", cr.HandleSubmitContainer)
	mux.HandleFunc("GET /api/containers", cr.HandleListContainers)
	mux.HandleFunc("GET /api/containers/{containerID}", cr.HandleGetContainer)
	mux.HandleFunc("PUT /api/containers/{containerID}", cr.HandleResubmitContainer)
	mux.HandleFunc("POST /api/containers/{containerID}/admin-review", cr.HandleAdminReview)
	mux.HandleFunc("POST /api/containers/{containerID}/decision", cr.HandleFinalDecision)
}

// HandleSubmitContainer handles POST /api/containers requests
func (cr *ContainerRouter) HandleSubmitContainer(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.SubmitContainerDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	container, err := cr.cs.Submit(r.Context(), actor, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, container)
}

// HandleListContainers handles GET /api/containers requests
// Optional Query Filters: department, status, submittedBy, offset, limit
func (cr *ContainerRouter) HandleListContainers(w http.ResponseWriter, r *http.Request) {
	var filter model.ContainerFilter

	if department := r.URL.Query().Get("department"); department != "" {
		filter.Department = &department
	}

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := model.ContainerStatus(statusStr)
		if !status.Valid() {
			writeError(w, apperror.Validationf("unknown status %q", statusStr))
			return
		}
		filter.Status = &status
	}

	if submittedByStr := r.URL.Query().Get("submittedBy"); submittedByStr != "" {
		submittedBy, err := uuid.Parse(submittedByStr)
		if err != nil {
			writeError(w, apperror.Validationf("invalid submittedBy: %v", err))
			return
		}
		filter.SubmittedBy = &submittedBy
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, apperror.Validationf("invalid 'limit' query parameter, must be an integer"))
			return
		}
		filter.Limit = &limit
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, apperror.Validationf("invalid 'offset' query parameter, must be an integer"))
			return
		}
		filter.Offset = &offset
	}

	result, err := cr.cs.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGetContainer handles GET /api/containers/{containerID} requests
func (cr *ContainerRouter) HandleGetContainer(w http.ResponseWriter, r *http.Request) {
	containerID, err := pathUUID(r, "containerID")
	if err != nil {
		writeError(w, err)
		return
	}

	container, err := cr.cs.GetByID(r.Context(), containerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, container)
}

// HandleResubmitContainer handles PUT /api/containers/{containerID} requests
func (cr *ContainerRouter) HandleResubmitContainer(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	containerID, err := pathUUID(r, "containerID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.ResubmitContainerDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	container, err := cr.cs.Resubmit(r.Context(), actor, containerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, container)
}

// HandleAdminReview handles POST /api/containers/{containerID}/admin-review requests
func (cr *ContainerRouter) HandleAdminReview(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	containerID, err := pathUUID(r, "containerID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.AdminReviewDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	container, err := cr.cs.AdminReview(r.Context(), actor, containerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, container)
}

// HandleFinalDecision handles POST /api/containers/{containerID}/decision requests
func (cr *ContainerRouter) HandleFinalDecision(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	containerID, err := pathUUID(r, "containerID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.FinalDecisionDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	container, err := cr.cs.FinalDecide(r.Context(), actor, containerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, container)
}

// pathUUID parses a uuid path value.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, apperror.Validationf("missing %s in path", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validationf("invalid %s: %v", name, err)
	}
	return id, nil
}
