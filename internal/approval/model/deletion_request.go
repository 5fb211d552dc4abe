package model

import (
	"time"

	"github.com/google/uuid"
)

// DeletionRequestStatus represents where a deletion request sits in its
// two-stage workflow.
type DeletionRequestStatus string

const (
	DeletionStatusPending       DeletionRequestStatus = "PENDING"        // Created, awaiting admin review or a direct HOD decision
	DeletionStatusAdminReviewed DeletionRequestStatus = "ADMIN_REVIEWED" // Advisory review recorded, awaiting the HOD decision
	DeletionStatusApproved      DeletionRequestStatus = "APPROVED"       // Terminal; the container has been removed
	DeletionStatusRejected      DeletionRequestStatus = "REJECTED"       // Terminal; the container stays untouched
)

// DeletionRecommendation is the reviewer's advisory outcome.
type DeletionRecommendation string

const (
	RecommendationApprove DeletionRecommendation = "APPROVE"
	RecommendationReject  DeletionRecommendation = "REJECT"
)

// DeletionRequest asks for the irrecoverable removal of one container. A
// container may accumulate historical requests, but at most one is open
// (non-terminal) at a time. Requests outlive an approved deletion as audit
// records, so the container reference carries no database-level constraint.
type DeletionRequest struct {
	BaseModel
	ContainerID uuid.UUID             `gorm:"type:uuid;column:container_id;not null;index" json:"containerId"`
	RequestedBy uuid.UUID             `gorm:"type:uuid;column:requested_by;not null" json:"requestedBy"`
	Reason      string                `gorm:"type:text;column:reason;not null" json:"reason"`
	Status      DeletionRequestStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`

	AdminReviewedBy *uuid.UUID              `gorm:"type:uuid;column:admin_reviewed_by" json:"adminReviewedBy,omitempty"`
	AdminComment    *string                 `gorm:"type:text;column:admin_comment" json:"adminComment,omitempty"`
	Recommendation  *DeletionRecommendation `gorm:"type:varchar(10);column:recommendation" json:"recommendation,omitempty"`
	AdminReviewedAt *time.Time              `gorm:"column:admin_reviewed_at" json:"adminReviewedAt,omitempty"`

	DecidedBy       *uuid.UUID `gorm:"type:uuid;column:decided_by" json:"decidedBy,omitempty"`
	DecisionComment *string    `gorm:"type:text;column:decision_comment" json:"decisionComment,omitempty"`
	DecidedAt       *time.Time `gorm:"column:decided_at" json:"decidedAt,omitempty"`
}

func (r *DeletionRequest) TableName() string {
	return "deletion_requests"
}

// IsOpen reports whether the request still awaits a final decision.
func (s DeletionRequestStatus) IsOpen() bool {
	return s == DeletionStatusPending || s == DeletionStatusAdminReviewed
}
