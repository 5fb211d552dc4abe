package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
)

// AttachmentRemover detaches stored files from a container that is being
// deleted. Satisfied by the attachments service.
type AttachmentRemover interface {
	RemoveForContainerInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID) error
}

// DeletionService implements the two-stage deletion workflow over deletion
// requests. Approving a request removes the referenced container, its hazard
// pairs and its attachments in the same transaction; the request itself
// survives as an audit record.
type DeletionService struct {
	db          *gorm.DB
	containers  ContainerRepository
	requests    DeletionRequestRepository
	attachments AttachmentRemover
}

func NewDeletionService(db *gorm.DB, containers ContainerRepository, requests DeletionRequestRepository, attachments AttachmentRemover) *DeletionService {
	return &DeletionService{
		db:          db,
		containers:  containers,
		requests:    requests,
		attachments: attachments,
	}
}

// Request opens a deletion request for a container. Only the container's
// original submitter may request deletion, the reason must carry at least 20
// characters, and at most one request per container may be open at a time.
func (s *DeletionService) Request(ctx context.Context, actor *model.User, containerID uuid.UUID, req *model.RequestDeletionDTO) (*model.DeletionRequest, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Reason)) < minDeletionReasonLength {
		return nil, apperror.Validationf("deletion reason must be at least %d characters", minDeletionReasonLength)
	}

	var created *model.DeletionRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		container, err := s.containers.GetByIDInTx(ctx, tx, containerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("container %s not found", containerID)
			}
			return fmt.Errorf("failed to load container: %w", err)
		}

		if actor == nil || !actor.Active {
			return apperror.Forbiddenf("actor is not an active user")
		}
		if actor.ID != container.SubmittedBy {
			return apperror.Forbiddenf("only the original submitter may request deletion of this container")
		}

		if _, err := s.requests.GetOpenByContainerIDInTx(ctx, tx, containerID); err == nil {
			return apperror.Conflictf("container %s already has an open deletion request", containerID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check open deletion requests: %w", err)
		}

		created = &model.DeletionRequest{
			ContainerID: containerID,
			RequestedBy: actor.ID,
			Reason:      req.Reason,
			Status:      model.DeletionStatusPending,
		}
		return s.requests.CreateInTx(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AdminReview records the reviewer's advisory recommendation on a pending
// request. The recommendation does not delete anything and a request cannot
// be reviewed twice.
func (s *DeletionService) AdminReview(ctx context.Context, actor *model.User, requestID uuid.UUID, req *model.DeletionReviewDTO) (*model.DeletionRequest, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if err := ValidateComment(req.Comment); err != nil {
		return nil, err
	}
	if req.Recommendation != model.RecommendationApprove && req.Recommendation != model.RecommendationReject {
		return nil, apperror.Validationf("unknown recommendation %q", req.Recommendation)
	}
	if actor == nil || !actor.Active {
		return nil, apperror.Forbiddenf("actor is not an active user")
	}
	if actor.Role != model.RoleAdmin {
		return nil, apperror.Forbiddenf("role %s is not permitted to review deletion requests", actor.Role)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":            model.DeletionStatusAdminReviewed,
		"admin_reviewed_by": actor.ID,
		"admin_comment":     req.Comment,
		"recommendation":    req.Recommendation,
		"admin_reviewed_at": now,
	}

	var out *model.DeletionRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.requests.UpdateStatusInTx(ctx, tx, requestID,
			[]model.DeletionRequestStatus{model.DeletionStatusPending}, updates)
		if err != nil {
			return fmt.Errorf("failed to update deletion request: %w", err)
		}
		if rows == 0 {
			return s.transitionFailure(ctx, tx, requestID, model.DeletionStatusPending)
		}
		out, err = s.requests.GetByIDInTx(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinalDecide records the HOD decision on a request. The decision may bypass
// the admin review and act on a PENDING request directly. Approval removes
// the referenced container, its pairs and its attachments atomically with the
// status change; rejection leaves the container untouched.
func (s *DeletionService) FinalDecide(ctx context.Context, actor *model.User, requestID uuid.UUID, req *model.DeletionDecisionDTO) (*model.DeletionRequest, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if err := ValidateComment(req.Comment); err != nil {
		return nil, err
	}
	if actor == nil || !actor.Active {
		return nil, apperror.Forbiddenf("actor is not an active user")
	}
	if actor.Role != model.RoleHOD {
		return nil, apperror.Forbiddenf("role %s is not permitted to decide deletion requests", actor.Role)
	}

	var target model.DeletionRequestStatus
	switch req.Decision {
	case model.DecisionApprove:
		target = model.DeletionStatusApproved
	case model.DecisionReject:
		target = model.DeletionStatusRejected
	default:
		return nil, apperror.Validationf("unknown decision %q", req.Decision)
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":           target,
		"decided_by":       actor.ID,
		"decision_comment": req.Comment,
		"decided_at":       now,
	}
	openStatuses := []model.DeletionRequestStatus{
		model.DeletionStatusPending,
		model.DeletionStatusAdminReviewed,
	}

	var out *model.DeletionRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := s.requests.GetByIDInTx(ctx, tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFoundf("deletion request %s not found", requestID)
			}
			return fmt.Errorf("failed to load deletion request: %w", err)
		}

		rows, err := s.requests.UpdateStatusInTx(ctx, tx, requestID, openStatuses, updates)
		if err != nil {
			return fmt.Errorf("failed to update deletion request: %w", err)
		}
		if rows == 0 {
			return s.transitionFailure(ctx, tx, requestID, model.DeletionStatusPending)
		}

		if target == model.DeletionStatusApproved {
			if s.attachments != nil {
				if err := s.attachments.RemoveForContainerInTx(ctx, tx, request.ContainerID); err != nil {
					return fmt.Errorf("failed to remove attachments of container %s: %w", request.ContainerID, err)
				}
			}
			if err := s.containers.DeleteInTx(ctx, tx, request.ContainerID); err != nil {
				return fmt.Errorf("failed to delete container %s: %w", request.ContainerID, err)
			}
		}

		out, err = s.requests.GetByIDInTx(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one deletion request.
func (s *DeletionService) GetByID(ctx context.Context, id uuid.UUID) (*model.DeletionRequest, error) {
	request, err := s.requests.GetByIDInTx(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("deletion request %s not found", id)
		}
		return nil, fmt.Errorf("failed to load deletion request: %w", err)
	}
	return request, nil
}

// List returns deletion requests, optionally narrowed to one container.
func (s *DeletionService) List(ctx context.Context, containerID *uuid.UUID) ([]model.DeletionRequest, error) {
	return s.requests.List(ctx, containerID)
}

// transitionFailure turns a zero-row compare-and-set into the right error:
// NotFound when the request is gone, Conflict otherwise.
func (s *DeletionService) transitionFailure(ctx context.Context, tx *gorm.DB, requestID uuid.UUID, expected model.DeletionRequestStatus) error {
	current, err := s.requests.GetByIDInTx(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("deletion request %s not found", requestID)
		}
		return fmt.Errorf("failed to load deletion request: %w", err)
	}
	return apperror.Conflictf("deletion request status is %s, expected %s", current.Status, expected)
}
