package service

import (
	"strings"
	"unicode/utf8"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
)

// Action identifies one transition of the container approval workflow.
type Action string

const (
	ActionAdminForward Action = "admin_forward" // Reviewer passes the submission on to the HOD
	ActionAdminRework  Action = "admin_rework"  // Reviewer returns the submission for rework
	ActionFinalApprove Action = "final_approve" // HOD approves
	ActionFinalReject  Action = "final_reject"  // HOD rejects
	ActionFinalRework  Action = "final_rework"  // HOD returns the submission for rework
	ActionResubmit     Action = "resubmit"      // Original submitter starts a new cycle after rework
)

// minCommentLength is the smallest accepted review/decision comment.
const minCommentLength = 10

// transitionRule describes who may perform an action and which status arcs it
// covers. The HOD arcs include PENDING_REVIEW so the final authority can
// bypass a slow reviewer; whether a review happened is recorded for audit,
// not required for permission.
type transitionRule struct {
	role model.Role
	arcs map[model.ContainerStatus]model.ContainerStatus
}

var approvalTransitions = map[Action]transitionRule{
	ActionAdminForward: {
		role: model.RoleAdmin,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusPendingReview: model.ContainerStatusPending,
		},
	},
	ActionAdminRework: {
		role: model.RoleAdmin,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusPendingReview: model.ContainerStatusReworkRequested,
		},
	},
	ActionFinalApprove: {
		role: model.RoleHOD,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusPendingReview: model.ContainerStatusApproved,
			model.ContainerStatusPending:       model.ContainerStatusApproved,
		},
	},
	ActionFinalReject: {
		role: model.RoleHOD,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusPendingReview: model.ContainerStatusRejected,
			model.ContainerStatusPending:       model.ContainerStatusRejected,
		},
	},
	ActionFinalRework: {
		role: model.RoleHOD,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusPendingReview: model.ContainerStatusReworkRequested,
			model.ContainerStatusPending:       model.ContainerStatusReworkRequested,
		},
	},
	ActionResubmit: {
		role: model.RoleSubmitter,
		arcs: map[model.ContainerStatus]model.ContainerStatus{
			model.ContainerStatusReworkRequested: model.ContainerStatusPendingReview,
		},
	},
}

// StateMachine evaluates approval workflow transitions against the single
// role-gated transition table. It holds no state and is safe for concurrent
// use.
type StateMachine struct{}

func NewStateMachine() *StateMachine {
	return &StateMachine{}
}

// Next returns the target status for performing action from the given status
// as the given actor. Role violations surface as Forbidden; status violations
// surface as Conflict so the caller knows to refresh and retry rather than
// re-authenticate.
func (sm *StateMachine) Next(action Action, from model.ContainerStatus, actor *model.User) (model.ContainerStatus, error) {
	rule, ok := approvalTransitions[action]
	if !ok {
		return "", apperror.Validationf("unknown action %q", action)
	}

	if actor == nil || !actor.Active {
		return "", apperror.Forbiddenf("actor is not an active user")
	}
	if actor.Role != rule.role {
		return "", apperror.Forbiddenf("role %s is not permitted to perform %s", actor.Role, action)
	}

	to, ok := rule.arcs[from]
	if !ok {
		return "", apperror.Conflictf("action %s is not available while the container is %s", action, from)
	}
	return to, nil
}

// DecisionAction maps a final decision value onto its workflow action.
func DecisionAction(decision model.Decision) (Action, error) {
	switch decision {
	case model.DecisionApprove:
		return ActionFinalApprove, nil
	case model.DecisionReject:
		return ActionFinalReject, nil
	case model.DecisionRework:
		return ActionFinalRework, nil
	default:
		return "", apperror.Validationf("unknown decision %q", decision)
	}
}

// ReviewActionOf maps an admin review action value onto its workflow action.
func ReviewActionOf(action model.ReviewAction) (Action, error) {
	switch action {
	case model.ReviewActionForward:
		return ActionAdminForward, nil
	case model.ReviewActionRework:
		return ActionAdminRework, nil
	default:
		return "", apperror.Validationf("unknown review action %q", action)
	}
}

// ValidateComment enforces the minimum comment length shared by every review
// and decision transition. Length counts runes, not bytes.
func ValidateComment(comment string) error {
	if utf8.RuneCountInString(strings.TrimSpace(comment)) < minCommentLength {
		return apperror.Validationf("comment must be at least %d characters", minCommentLength)
	}
	return nil
}
