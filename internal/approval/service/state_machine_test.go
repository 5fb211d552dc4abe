package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
)

func testActor(role model.Role) *model.User {
	return &model.User{Role: role, Active: true}
}

func TestStateMachineAdminReviewArcs(t *testing.T) {
	sm := NewStateMachine()
	admin := testActor(model.RoleAdmin)

	t.Run("forward moves pending_review to pending", func(t *testing.T) {
		to, err := sm.Next(ActionAdminForward, model.ContainerStatusPendingReview, admin)
		assert.NoError(t, err)
		assert.Equal(t, model.ContainerStatusPending, to)
	})

	t.Run("rework moves pending_review to rework_requested", func(t *testing.T) {
		to, err := sm.Next(ActionAdminRework, model.ContainerStatusPendingReview, admin)
		assert.NoError(t, err)
		assert.Equal(t, model.ContainerStatusReworkRequested, to)
	})

	t.Run("admin cannot act on pending", func(t *testing.T) {
		_, err := sm.Next(ActionAdminForward, model.ContainerStatusPending, admin)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})
}

func TestStateMachineFinalDecisionArcs(t *testing.T) {
	sm := NewStateMachine()
	hod := testActor(model.RoleHOD)

	// The HOD may act on PENDING_REVIEW directly (bypass) or on PENDING.
	for _, from := range []model.ContainerStatus{model.ContainerStatusPendingReview, model.ContainerStatusPending} {
		to, err := sm.Next(ActionFinalApprove, from, hod)
		assert.NoError(t, err)
		assert.Equal(t, model.ContainerStatusApproved, to)

		to, err = sm.Next(ActionFinalReject, from, hod)
		assert.NoError(t, err)
		assert.Equal(t, model.ContainerStatusRejected, to)

		to, err = sm.Next(ActionFinalRework, from, hod)
		assert.NoError(t, err)
		assert.Equal(t, model.ContainerStatusReworkRequested, to)
	}

	t.Run("terminal states accept no decision", func(t *testing.T) {
		_, err := sm.Next(ActionFinalApprove, model.ContainerStatusApproved, hod)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))

		_, err = sm.Next(ActionFinalReject, model.ContainerStatusRejected, hod)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})
}

func TestStateMachineRoleGates(t *testing.T) {
	sm := NewStateMachine()

	cases := []struct {
		name   string
		action Action
		from   model.ContainerStatus
		actor  *model.User
	}{
		{"submitter cannot admin-review", ActionAdminForward, model.ContainerStatusPendingReview, testActor(model.RoleSubmitter)},
		{"admin cannot final-decide", ActionFinalApprove, model.ContainerStatusPending, testActor(model.RoleAdmin)},
		{"viewer cannot final-decide", ActionFinalReject, model.ContainerStatusPendingReview, testActor(model.RoleViewer)},
		{"hod cannot resubmit", ActionResubmit, model.ContainerStatusReworkRequested, testActor(model.RoleHOD)},
		{"inactive user is rejected", ActionFinalApprove, model.ContainerStatusPending, &model.User{Role: model.RoleHOD, Active: false}},
		{"nil actor is rejected", ActionFinalApprove, model.ContainerStatusPending, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sm.Next(tc.action, tc.from, tc.actor)
			assert.True(t, apperror.IsKind(err, apperror.KindForbidden), "got %v", err)
		})
	}
}

func TestStateMachineResubmit(t *testing.T) {
	sm := NewStateMachine()
	submitter := testActor(model.RoleSubmitter)

	to, err := sm.Next(ActionResubmit, model.ContainerStatusReworkRequested, submitter)
	assert.NoError(t, err)
	assert.Equal(t, model.ContainerStatusPendingReview, to)

	_, err = sm.Next(ActionResubmit, model.ContainerStatusPendingReview, submitter)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestValidateComment(t *testing.T) {
	assert.Error(t, ValidateComment(""))
	assert.Error(t, ValidateComment("too short"))
	assert.Error(t, ValidateComment("         padded        "))
	assert.NoError(t, ValidateComment("long enough comment"))

	// Length counts runes: nine two-byte runes span eighteen bytes but are
	// still one rune short.
	assert.Error(t, ValidateComment(strings.Repeat("ü", 9)))
	assert.NoError(t, ValidateComment(strings.Repeat("ü", 10)))
}

func TestDecisionAndReviewActionMapping(t *testing.T) {
	action, err := DecisionAction(model.DecisionApprove)
	assert.NoError(t, err)
	assert.Equal(t, ActionFinalApprove, action)

	action, err = DecisionAction(model.DecisionRework)
	assert.NoError(t, err)
	assert.Equal(t, ActionFinalRework, action)

	_, err = DecisionAction(model.Decision("escalate"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	action, err = ReviewActionOf(model.ReviewActionForward)
	assert.NoError(t, err)
	assert.Equal(t, ActionAdminForward, action)

	_, err = ReviewActionOf(model.ReviewAction("defer"))
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
