package router

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/approval/service"
)

type DeletionRouter struct {
	ds *service.DeletionService
}

func NewDeletionRouter(ds *service.DeletionService) *DeletionRouter {
	return &DeletionRouter{ds: ds}
}

// Register wires the deletion workflow endpoints onto the mux.
func (dr *DeletionRouter) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/containers/{containerID}/deletion-requests", dr.HandleRequestDeletion)
	mux.HandleFunc("GET /api/deletion-requests", dr.HandleListDeletionRequests)
	mux.HandleFunc("GET /api/deletion-requests/{requestID}", dr.HandleGetDeletionRequest)
	mux.HandleFunc("POST /api/deletion-requests/{requestID}/admin-review", dr.HandleDeletionAdminReview)
	mux.HandleFunc("POST /api/deletion-requests/{requestID}/decision", dr.HandleDeletionDecision)
}

// HandleRequestDeletion handles POST /api/containers/{containerID}/deletion-requests requests
func (dr *DeletionRouter) HandleRequestDeletion(w http.ResponseWriter, r *http.Request) {
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

	var req model.RequestDeletionDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	request, err := dr.ds.Request(r.Context(), actor, containerID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// HandleListDeletionRequests handles GET /api/deletion-requests requests
// Optional Query Filters: containerId
func (dr *DeletionRouter) HandleListDeletionRequests(w http.ResponseWriter, r *http.Request) {
	var containerID *uuid.UUID
	if containerIDStr := r.URL.Query().Get("containerId"); containerIDStr != "" {
		parsed, err := uuid.Parse(containerIDStr)
		if err != nil {
			writeError(w, apperror.Validationf("invalid containerId: %v", err))
			return
		}
		containerID = &parsed
	}

	requests, err := dr.ds.List(r.Context(), containerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, requests)
}

// HandleGetDeletionRequest handles GET /api/deletion-requests/{requestID} requests
func (dr *DeletionRouter) HandleGetDeletionRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, err)
		return
	}

	request, err := dr.ds.GetByID(r.Context(), requestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// HandleDeletionAdminReview handles POST /api/deletion-requests/{requestID}/admin-review requests
func (dr *DeletionRouter) HandleDeletionAdminReview(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.DeletionReviewDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	request, err := dr.ds.AdminReview(r.Context(), actor, requestID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// HandleDeletionDecision handles POST /api/deletion-requests/{requestID}/decision requests
func (dr *DeletionRouter) HandleDeletionDecision(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req model.DeletionDecisionDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	request, err := dr.ds.FinalDecide(r.Context(), actor, requestID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}
