package model

import (
	"github.com/google/uuid"
)

// ReviewAction is the admin reviewer's choice on a pending-review container.
type ReviewAction string

const (
	ReviewActionForward ReviewAction = "forward" // Pass the submission on to the HOD
	ReviewActionRework  ReviewAction = "rework"  // Return the submission to the submitter
)

// Decision is the final authority's choice.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionRework  Decision = "rework"
)

// PairDistanceDTO carries the proposed separation distance for one unordered
// hazard category pair.
type PairDistanceDTO struct {
	CategoryAID uuid.UUID `json:"categoryAId" validate:"required"`
	CategoryBID uuid.UUID `json:"categoryBId" validate:"required"`
	Distance    float64   `json:"distance"`
}

// SubmitContainerDTO is the payload for a new container submission.
type SubmitContainerDTO struct {
	Department        string            `json:"department" validate:"required"`
	Location          string            `json:"location" validate:"required"`
	ContainerCode     string            `json:"containerCode" validate:"required"`
	ContainerType     string            `json:"containerType" validate:"required"`
	HazardCategoryIDs []uuid.UUID       `json:"hazardCategoryIds" validate:"required,min=1"`
	PairDistances     []PairDistanceDTO `json:"pairDistances" validate:"dive"`
}

// ResubmitContainerDTO is the payload for resubmitting after rework. The
// container code is immutable: when present it must match the stored code.
type ResubmitContainerDTO struct {
	Department        string            `json:"department" validate:"required"`
	Location          string            `json:"location" validate:"required"`
	ContainerCode     string            `json:"containerCode,omitempty"`
	ContainerType     string            `json:"containerType" validate:"required"`
	HazardCategoryIDs []uuid.UUID       `json:"hazardCategoryIds" validate:"required,min=1"`
	PairDistances     []PairDistanceDTO `json:"pairDistances" validate:"dive"`
}

// AdminReviewDTO is the reviewer's forward/rework call on a container.
// ExpectedStatus is the compare-and-set precondition: the transition fails
// with a conflict when the stored status differs.
type AdminReviewDTO struct {
	Comment        string          `json:"comment" validate:"required"`
	Action         ReviewAction    `json:"action" validate:"required,oneof=forward rework"`
	ExpectedStatus ContainerStatus `json:"expectedStatus" validate:"required"`
}

// FinalDecisionDTO is the HOD's decision on a container.
type FinalDecisionDTO struct {
	Comment        string          `json:"comment" validate:"required"`
	Decision       Decision        `json:"decision" validate:"required,oneof=approve reject rework"`
	ExpectedStatus ContainerStatus `json:"expectedStatus" validate:"required"`
}

// RequestDeletionDTO opens a deletion request for a container.
type RequestDeletionDTO struct {
	Reason string `json:"reason" validate:"required"`
}

// DeletionReviewDTO is the reviewer's advisory recommendation on a deletion
// request.
type DeletionReviewDTO struct {
	Comment        string                 `json:"comment" validate:"required"`
	Recommendation DeletionRecommendation `json:"recommendation" validate:"required,oneof=APPROVE REJECT"`
}

// DeletionDecisionDTO is the HOD's decision on a deletion request.
type DeletionDecisionDTO struct {
	Comment  string   `json:"comment" validate:"required"`
	Decision Decision `json:"decision" validate:"required,oneof=approve reject"`
}

// ContainerFilter narrows and paginates container listings.
type ContainerFilter struct {
	Department  *string          `json:"department,omitempty"`
	Status      *ContainerStatus `json:"status,omitempty"`
	SubmittedBy *uuid.UUID       `json:"submittedBy,omitempty"`
	Offset      *int             `json:"offset,omitempty"`
	Limit       *int             `json:"limit,omitempty"`
}

// ContainerListResult is a paginated container listing.
type ContainerListResult struct {
	TotalCount int64       `json:"totalCount"`
	Containers []Container `json:"containers"`
	Offset     int         `json:"offset"`
	Limit      int         `json:"limit"`
}
