package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/attachments"
)

func TestRequestDeletion(t *testing.T) {
	db := newTestDB(t)
	ids := categoryIDs(t, db)
	cs := newContainerService(db)
	ds := newDeletionService(db)
	submitter := seedUser(t, db, model.RoleSubmitter)
	other := seedUser(t, db, model.RoleSubmitter)
	ctx := context.Background()

	container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-001"))
	require.NoError(t, err)

	t.Run("reason below twenty characters is rejected", func(t *testing.T) {
		_, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "nineteen chars long", // 19 characters
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
	})

	t.Run("reason length counts runes not bytes", func(t *testing.T) {
		// Nineteen two-byte runes span 38 bytes but stay below the minimum.
		_, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: strings.Repeat("ö", 19),
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
	})

	t.Run("only the original submitter may request", func(t *testing.T) {
		_, err := ds.Request(ctx, other, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("unknown container is not found", func(t *testing.T) {
		_, err := ds.Request(ctx, submitter, uuid.New(), &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("valid request opens in pending", func(t *testing.T) {
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusPending, request.Status)
		assert.Equal(t, submitter.ID, request.RequestedBy)
	})

	t.Run("second open request conflicts", func(t *testing.T) {
		_, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "duplicate request for the same container",
		})
		assert.True(t, apperror.IsKind(err, apperror.KindConflict), "got %v", err)
	})
}

func TestDeletionAdminReview(t *testing.T) {
	db := newTestDB(t)
	ids := categoryIDs(t, db)
	cs := newContainerService(db)
	ds := newDeletionService(db)
	submitter := seedUser(t, db, model.RoleSubmitter)
	admin := seedUser(t, db, model.RoleAdmin)
	ctx := context.Background()

	container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-100"))
	require.NoError(t, err)
	request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
		Reason: "container damaged beyond repair",
	})
	require.NoError(t, err)

	t.Run("non-admin role is forbidden", func(t *testing.T) {
		_, err := ds.AdminReview(ctx, submitter, request.ID, &model.DeletionReviewDTO{
			Comment:        "looks reasonable to me",
			Recommendation: model.RecommendationApprove,
		})
		assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
	})

	t.Run("review records the recommendation without deleting", func(t *testing.T) {
		reviewed, err := ds.AdminReview(ctx, admin, request.ID, &model.DeletionReviewDTO{
			Comment:        "verified the disposal paperwork",
			Recommendation: model.RecommendationApprove,
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusAdminReviewed, reviewed.Status)
		require.NotNil(t, reviewed.Recommendation)
		assert.Equal(t, model.RecommendationApprove, *reviewed.Recommendation)

		// The container is still there.
		_, err = cs.GetByID(ctx, container.ID)
		assert.NoError(t, err)
	})

	t.Run("a request cannot be reviewed twice", func(t *testing.T) {
		_, err := ds.AdminReview(ctx, admin, request.ID, &model.DeletionReviewDTO{
			Comment:        "changed my mind on this one",
			Recommendation: model.RecommendationReject,
		})
		assert.True(t, apperror.IsKind(err, apperror.KindConflict), "got %v", err)
	})
}

func TestDeletionFinalDecision(t *testing.T) {
	ctx := context.Background()

	t.Run("approval deletes the container and its pairs", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		ds := newDeletionService(db)
		submitter := seedUser(t, db, model.RoleSubmitter)
		admin := seedUser(t, db, model.RoleAdmin)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-200"))
		require.NoError(t, err)
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		require.NoError(t, err)
		_, err = ds.AdminReview(ctx, admin, request.ID, &model.DeletionReviewDTO{
			Comment:        "verified the disposal paperwork",
			Recommendation: model.RecommendationApprove,
		})
		require.NoError(t, err)

		decided, err := ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "approved, records archived",
			Decision: model.DecisionApprove,
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusApproved, decided.Status)

		_, err = cs.GetByID(ctx, container.ID)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound), "got %v", err)

		var pairCount int64
		require.NoError(t, db.Model(&model.HazardPair{}).
			Where("container_id = ?", container.ID).Count(&pairCount).Error)
		assert.Zero(t, pairCount)

		// The request survives as an audit record.
		kept, err := ds.GetByID(ctx, request.ID)
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusApproved, kept.Status)
	})

	t.Run("approval removes the container's attachments", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		blobs := newMemoryBlobs()
		attachSvc := attachments.NewService(db, blobs)
		ds := NewDeletionService(db, NewGormContainerRepository(db), NewGormDeletionRequestRepository(db), attachSvc)
		submitter := seedUser(t, db, model.RoleSubmitter)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-250"))
		require.NoError(t, err)
		uploaded, err := attachSvc.Upload(ctx, submitter, &container.ID, attachments.KindPhoto,
			"label.png", bytes.NewReader([]byte("png bytes")), 9, "image/png")
		require.NoError(t, err)
		require.Contains(t, blobs.objects, uploaded.Key)

		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		require.NoError(t, err)
		_, err = ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "approved, records archived",
			Decision: model.DecisionApprove,
		})
		require.NoError(t, err)

		remaining, err := attachSvc.ListForContainer(ctx, container.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
		assert.NotContains(t, blobs.objects, uploaded.Key)
	})

	t.Run("hod may decide a pending request directly", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		ds := newDeletionService(db)
		submitter := seedUser(t, db, model.RoleSubmitter)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-300"))
		require.NoError(t, err)
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		require.NoError(t, err)

		decided, err := ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "approved without admin review",
			Decision: model.DecisionApprove,
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusApproved, decided.Status)
		assert.Nil(t, decided.AdminReviewedBy)
	})

	t.Run("rejection leaves the container untouched", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		ds := newDeletionService(db)
		submitter := seedUser(t, db, model.RoleSubmitter)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-400"))
		require.NoError(t, err)
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "requested by mistake, please reject",
		})
		require.NoError(t, err)

		decided, err := ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "container is still in active use",
			Decision: model.DecisionReject,
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeletionStatusRejected, decided.Status)

		_, err = cs.GetByID(ctx, container.ID)
		assert.NoError(t, err)

		// A rejected request is closed, so a new one may be opened.
		_, err = ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "second attempt with better reasoning",
		})
		assert.NoError(t, err)
	})

	t.Run("rework is not a valid deletion decision", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		ds := newDeletionService(db)
		submitter := seedUser(t, db, model.RoleSubmitter)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-500"))
		require.NoError(t, err)
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "container contents were disposed of",
		})
		require.NoError(t, err)

		_, err = ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "please gather more detail",
			Decision: model.DecisionRework,
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("decided requests are closed to further decisions", func(t *testing.T) {
		db := newTestDB(t)
		ids := categoryIDs(t, db)
		cs := newContainerService(db)
		ds := newDeletionService(db)
		submitter := seedUser(t, db, model.RoleSubmitter)
		hod := seedUser(t, db, model.RoleHOD)

		container, err := cs.Submit(ctx, submitter, safeSubmission(ids, "DEL-600"))
		require.NoError(t, err)
		request, err := ds.Request(ctx, submitter, container.ID, &model.RequestDeletionDTO{
			Reason: "requested by mistake, please reject",
		})
		require.NoError(t, err)
		_, err = ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "container is still in active use",
			Decision: model.DecisionReject,
		})
		require.NoError(t, err)

		_, err = ds.FinalDecide(ctx, hod, request.ID, &model.DeletionDecisionDTO{
			Comment:  "second decision on a closed request",
			Decision: model.DecisionApprove,
		})
		assert.True(t, apperror.IsKind(err, apperror.KindConflict), "got %v", err)
	})
}
