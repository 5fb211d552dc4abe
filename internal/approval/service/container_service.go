package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/hazard"
)

// minDeletionReasonLength is enforced by the deletion workflow but defined
// next to the other boundary constants.
const minDeletionReasonLength = 20

// ContainerService implements the container approval workflow: submission
// with compatibility validation, the admin/HOD transitions and rework cycles.
// Every status change runs as a compare-and-set inside one transaction.
type ContainerService struct {
	db         *gorm.DB
	evaluator  *hazard.Evaluator
	sm         *StateMachine
	containers ContainerRepository
	categories CategoryRepository
}

func NewContainerService(db *gorm.DB, evaluator *hazard.Evaluator, containers ContainerRepository, categories CategoryRepository) *ContainerService {
	return &ContainerService{
		db:         db,
		evaluator:  evaluator,
		sm:         NewStateMachine(),
		containers: containers,
		categories: categories,
	}
}

// Submit validates a new container submission, evaluates all hazard pairs and
// stores the container in PENDING_REVIEW. A submission that contains a danger
// pair or an isolation-violating pair is rejected at this boundary and never
// stored.
func (s *ContainerService) Submit(ctx context.Context, actor *model.User, req *model.SubmitContainerDTO) (*model.Container, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if actor == nil || !actor.Active {
		return nil, apperror.Forbiddenf("actor is not an active user")
	}
	if actor.Role != model.RoleSubmitter {
		return nil, apperror.Forbiddenf("role %s is not permitted to submit containers", actor.Role)
	}
	if err := validateRequiredFields(req.Department, req.Location, req.ContainerCode, req.ContainerType); err != nil {
		return nil, err
	}

	var created *model.Container
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.containers.GetByCodeInTx(ctx, tx, req.ContainerCode); err == nil {
			return apperror.Validationf("container code %s is already in use", req.ContainerCode)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check container code: %w", err)
		}

		pairs, err := s.buildPairs(ctx, tx, req.HazardCategoryIDs, req.PairDistances)
		if err != nil {
			return err
		}

		container := &model.Container{
			Department:    req.Department,
			Location:      req.Location,
			SubmittedBy:   actor.ID,
			ContainerCode: req.ContainerCode,
			ContainerType: req.ContainerType,
			Hazards:       model.UUIDArray(req.HazardCategoryIDs),
			Status:        model.ContainerStatusPendingReview,
		}
		if err := s.containers.CreateInTx(ctx, tx, container); err != nil {
			return fmt.Errorf("failed to create container: %w", err)
		}

		if err := s.containers.ReplacePairsInTx(ctx, tx, container.ID, pairs); err != nil {
			return fmt.Errorf("failed to store hazard pairs: %w", err)
		}

		created, err = s.containers.GetByIDInTx(ctx, tx, container.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AdminReview records the reviewer's forward/rework call on a container in
// PENDING_REVIEW. The transition is applied only when the stored status still
// matches the expected status carried by the request.
func (s *ContainerService) AdminReview(ctx context.Context, actor *model.User, containerID uuid.UUID, req *model.AdminReviewDTO) (*model.Container, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if err := ValidateComment(req.Comment); err != nil {
		return nil, err
	}
	if !req.ExpectedStatus.Valid() {
		return nil, apperror.Validationf("unknown expected status %q", req.ExpectedStatus)
	}

	action, err := ReviewActionOf(req.Action)
	if err != nil {
		return nil, err
	}
	to, err := s.sm.Next(action, req.ExpectedStatus, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":            to,
		"admin_reviewed_by": actor.ID,
		"admin_comment":     req.Comment,
		"admin_reviewed_at": now,
	}
	if to == model.ContainerStatusReworkRequested {
		updates["rework_count"] = gorm.Expr("rework_count + 1")
		updates["rework_reason"] = req.Comment
	}

	return s.applyContainerTransition(ctx, containerID, req.ExpectedStatus, updates)
}

// FinalDecide records the HOD decision. The HOD may act on PENDING_REVIEW
// directly (bypass) or on PENDING after an admin review; the transition table
// covers both arcs.
func (s *ContainerService) FinalDecide(ctx context.Context, actor *model.User, containerID uuid.UUID, req *model.FinalDecisionDTO) (*model.Container, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if err := ValidateComment(req.Comment); err != nil {
		return nil, err
	}
	if !req.ExpectedStatus.Valid() {
		return nil, apperror.Validationf("unknown expected status %q", req.ExpectedStatus)
	}

	action, err := DecisionAction(req.Decision)
	if err != nil {
		return nil, err
	}
	to, err := s.sm.Next(action, req.ExpectedStatus, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":           to,
		"decided_by":       actor.ID,
		"decision_comment": req.Comment,
		"decided_at":       now,
	}
	if to == model.ContainerStatusReworkRequested {
		updates["rework_count"] = gorm.Expr("rework_count + 1")
		updates["rework_reason"] = req.Comment
	}

	return s.applyContainerTransition(ctx, containerID, req.ExpectedStatus, updates)
}

// Resubmit starts a new submission cycle after rework. Only the original
// submitter may resubmit; the container code is immutable and the previous
// cycle's review fields are cleared. The full hazard pair set is regenerated
// atomically with the status change.
func (s *ContainerService) Resubmit(ctx context.Context, actor *model.User, containerID uuid.UUID, req *model.ResubmitContainerDTO) (*model.Container, error) {
	if req == nil {
		return nil, apperror.Validationf("request body is required")
	}
	if err := validateRequiredFields(req.Department, req.Location, "-", req.ContainerType); err != nil {
		return nil, err
	}

	var updated *model.Container
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
			return apperror.Forbiddenf("only the original submitter may resubmit this container")
		}
		to, err := s.sm.Next(ActionResubmit, container.Status, actor)
		if err != nil {
			return err
		}
		if req.ContainerCode != "" && req.ContainerCode != container.ContainerCode {
			return apperror.Validationf("container code is immutable and cannot be changed")
		}

		pairs, err := s.buildPairs(ctx, tx, req.HazardCategoryIDs, req.PairDistances)
		if err != nil {
			return err
		}

		hazardsJSON, err := json.Marshal(req.HazardCategoryIDs)
		if err != nil {
			return fmt.Errorf("failed to encode hazard selection: %w", err)
		}

		updates := map[string]any{
			"status":            to,
			"department":        req.Department,
			"location":          req.Location,
			"container_type":    req.ContainerType,
			"hazards":           string(hazardsJSON),
			"admin_reviewed_by": nil,
			"admin_comment":     nil,
			"admin_reviewed_at": nil,
			"decided_by":        nil,
			"decision_comment":  nil,
			"decided_at":        nil,
			"rework_reason":     nil,
		}
		rows, err := s.containers.UpdateStatusInTx(ctx, tx, containerID, model.ContainerStatusReworkRequested, updates)
		if err != nil {
			return fmt.Errorf("failed to update container: %w", err)
		}
		if rows == 0 {
			return apperror.Conflictf("container %s was modified concurrently", containerID)
		}

		if err := s.containers.ReplacePairsInTx(ctx, tx, containerID, pairs); err != nil {
			return fmt.Errorf("failed to regenerate hazard pairs: %w", err)
		}

		updated, err = s.containers.GetByIDInTx(ctx, tx, containerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID fetches one container with its hazard pairs.
func (s *ContainerService) GetByID(ctx context.Context, id uuid.UUID) (*model.Container, error) {
	container, err := s.containers.GetByIDInTx(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("container %s not found", id)
		}
		return nil, fmt.Errorf("failed to load container: %w", err)
	}
	return container, nil
}

// List returns a filtered, paginated container listing.
func (s *ContainerService) List(ctx context.Context, filter model.ContainerFilter) (*model.ContainerListResult, error) {
	return s.containers.List(ctx, filter)
}

// applyContainerTransition performs the compare-and-set status update and
// distinguishes NotFound from Conflict when zero rows were touched.
func (s *ContainerService) applyContainerTransition(ctx context.Context, containerID uuid.UUID, expected model.ContainerStatus, updates map[string]any) (*model.Container, error) {
	var out *model.Container
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.containers.UpdateStatusInTx(ctx, tx, containerID, expected, updates)
		if err != nil {
			return fmt.Errorf("failed to update container status: %w", err)
		}
		if rows == 0 {
			current, err := s.containers.GetByIDInTx(ctx, tx, containerID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.NotFoundf("container %s not found", containerID)
				}
				return fmt.Errorf("failed to load container: %w", err)
			}
			return apperror.Conflictf("container status is %s, expected %s", current.Status, expected)
		}

		out, err = s.containers.GetByIDInTx(ctx, tx, containerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// buildPairs resolves the hazard selection, validates full pair coverage and
// evaluates every pair. It rejects danger and isolation verdicts so that no
// stored container ever holds an unacceptable pair.
func (s *ContainerService) buildPairs(ctx context.Context, tx *gorm.DB, categoryIDs []uuid.UUID, distances []model.PairDistanceDTO) ([]model.HazardPair, error) {
	if len(categoryIDs) == 0 {
		return nil, apperror.Validationf("at least one hazard category must be selected")
	}

	seen := make(map[uuid.UUID]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		if _, dup := seen[id]; dup {
			return nil, apperror.Validationf("hazard category %s is selected more than once", id)
		}
		seen[id] = struct{}{}
	}

	categories, err := s.categories.GetByIDsInTx(ctx, tx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load hazard categories: %w", err)
	}
	codeByID := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		codeByID[c.ID] = c.Code
	}
	for _, id := range categoryIDs {
		if _, ok := codeByID[id]; !ok {
			return nil, apperror.Validationf("unknown hazard category %s", id)
		}
	}

	// Every unordered pair of the selection needs exactly one distance entry.
	type pairIdent struct {
		aID, bID     uuid.UUID
		aCode, bCode string
	}
	normalize := func(idA, idB uuid.UUID) (pairIdent, error) {
		codeA, okA := codeByID[idA]
		codeB, okB := codeByID[idB]
		if !okA || !okB {
			return pairIdent{}, apperror.Validationf("pair references a hazard category outside the selection")
		}
		if codeB < codeA {
			idA, idB = idB, idA
			codeA, codeB = codeB, codeA
		}
		return pairIdent{aID: idA, bID: idB, aCode: codeA, bCode: codeB}, nil
	}

	required := make(map[pairIdent]bool)
	for i := 0; i < len(categoryIDs); i++ {
		for j := i + 1; j < len(categoryIDs); j++ {
			ident, err := normalize(categoryIDs[i], categoryIDs[j])
			if err != nil {
				return nil, err
			}
			required[ident] = false
		}
	}

	pairs := make([]model.HazardPair, 0, len(required))
	for _, entry := range distances {
		if entry.CategoryAID == entry.CategoryBID {
			return nil, apperror.Validationf("a hazard pair must reference two distinct categories")
		}
		ident, err := normalize(entry.CategoryAID, entry.CategoryBID)
		if err != nil {
			return nil, err
		}
		covered, ok := required[ident]
		if !ok {
			return nil, apperror.Validationf("pair %s/%s is not part of the hazard selection", ident.aCode, ident.bCode)
		}
		if covered {
			return nil, apperror.Validationf("duplicate distance entry for pair %s/%s", ident.aCode, ident.bCode)
		}
		required[ident] = true

		if entry.Distance <= 0 {
			return nil, apperror.Validationf("separation distance for pair %s/%s must be positive", ident.aCode, ident.bCode)
		}

		verdict := s.evaluator.Evaluate(ident.aCode, ident.bCode, entry.Distance)
		if verdict.IsIsolated {
			return nil, apperror.Validationf("hazard classes %s and %s must be isolated and cannot share a container", ident.aCode, ident.bCode)
		}
		if verdict.Status == hazard.StatusDanger {
			return nil, apperror.Validationf("pair %s/%s at %.1fm is below the safe separation distance of %.1fm", ident.aCode, ident.bCode, entry.Distance, *verdict.MinRequiredDistance)
		}

		pairs = append(pairs, model.HazardPair{
			CategoryAID:         ident.aID,
			CategoryBID:         ident.bID,
			Distance:            entry.Distance,
			IsIsolated:          verdict.IsIsolated,
			MinRequiredDistance: verdict.MinRequiredDistance,
			Status:              verdict.Status,
		})
	}

	for ident, covered := range required {
		if !covered {
			return nil, apperror.Validationf("missing separation distance for pair %s/%s", ident.aCode, ident.bCode)
		}
	}

	return pairs, nil
}

func validateRequiredFields(department, location, containerCode, containerType string) error {
	if strings.TrimSpace(department) == "" {
		return apperror.Validationf("department is required")
	}
	if strings.TrimSpace(location) == "" {
		return apperror.Validationf("location is required")
	}
	if strings.TrimSpace(containerCode) == "" {
		return apperror.Validationf("container code is required")
	}
	if strings.TrimSpace(containerType) == "" {
		return apperror.Validationf("container type is required")
	}
	return nil
}
