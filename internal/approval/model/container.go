package model

import (
	"time"

	"github.com/google/uuid"
)

// ContainerStatus represents where a container sits in the approval workflow.
type ContainerStatus string

const (
	ContainerStatusPendingReview   ContainerStatus = "PENDING_REVIEW"   // Submitted, awaiting admin review or a direct HOD decision
	ContainerStatusPending         ContainerStatus = "PENDING"          // Admin review recorded, awaiting the HOD decision
	ContainerStatusApproved        ContainerStatus = "APPROVED"         // Terminal for this submission cycle
	ContainerStatusRejected        ContainerStatus = "REJECTED"         // Terminal for this submission cycle
	ContainerStatusReworkRequested ContainerStatus = "REWORK_REQUESTED" // Returned to the submitter; resubmission starts a new cycle
)

// Container represents a chemical-storage container and its position in the
// safety approval workflow.
type Container struct {
	BaseModel
	Department    string          `gorm:"type:varchar(100);column:department;not null" json:"department"`
	Location      string          `gorm:"type:varchar(255);column:location;not null" json:"location"`
	SubmittedBy   uuid.UUID       `gorm:"type:uuid;column:submitted_by;not null" json:"submittedBy"`
	ContainerCode string          `gorm:"type:varchar(50);column:container_code;not null;unique" json:"containerCode"` // Assigned at creation, never changes
	ContainerType string          `gorm:"type:varchar(50);column:container_type;not null" json:"containerType"`
	Hazards       UUIDArray       `gorm:"type:jsonb;column:hazards;not null;serializer:json" json:"hazards"` // Selected hazard category IDs, at least one
	Status        ContainerStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`

	// Admin review stage audit fields.
	AdminReviewedBy *uuid.UUID `gorm:"type:uuid;column:admin_reviewed_by" json:"adminReviewedBy,omitempty"`
	AdminComment    *string    `gorm:"type:text;column:admin_comment" json:"adminComment,omitempty"`
	AdminReviewedAt *time.Time `gorm:"column:admin_reviewed_at" json:"adminReviewedAt,omitempty"`

	// Final decision stage audit fields.
	DecidedBy       *uuid.UUID `gorm:"type:uuid;column:decided_by" json:"decidedBy,omitempty"`
	DecisionComment *string    `gorm:"type:text;column:decision_comment" json:"decisionComment,omitempty"`
	DecidedAt       *time.Time `gorm:"column:decided_at" json:"decidedAt,omitempty"`

	// Rework bookkeeping. The counter increments each time the container
	// enters REWORK_REQUESTED and never decreases.
	ReworkCount  int     `gorm:"column:rework_count;not null;default:0" json:"reworkCount"`
	ReworkReason *string `gorm:"type:text;column:rework_reason" json:"reworkReason,omitempty"`

	// Relationships
	Pairs []HazardPair `gorm:"foreignKey:ContainerID;references:ID" json:"pairs,omitempty"`
}

func (c *Container) TableName() string {
	return "containers"
}

// IsTerminal reports whether the status ends the current submission cycle.
func (s ContainerStatus) IsTerminal() bool {
	return s == ContainerStatusApproved || s == ContainerStatusRejected
}

// Valid reports whether the value is one of the defined statuses.
func (s ContainerStatus) Valid() bool {
	switch s {
	case ContainerStatusPendingReview, ContainerStatusPending,
		ContainerStatusApproved, ContainerStatusRejected,
		ContainerStatusReworkRequested:
		return true
	}
	return false
}
