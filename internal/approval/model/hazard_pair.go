package model

import (
	"github.com/google/uuid"

	"github.com/OpenCCS/ccs/internal/hazard"
)

// HazardPair is the evaluated compatibility record for one unordered pair of
// hazard categories inside a container. Pairs are derived data, owned by the
// container: the full set is regenerated whenever the hazard selection
// changes, never patched in place.
type HazardPair struct {
	BaseModel
	ContainerID uuid.UUID `gorm:"type:uuid;column:container_id;not null;uniqueIndex:idx_container_pair" json:"containerId"`
	// CategoryAID/CategoryBID are stored normalized (A before B by category
	// code) so a pair is never stored twice in both orders.
	CategoryAID uuid.UUID `gorm:"type:uuid;column:category_a_id;not null;uniqueIndex:idx_container_pair" json:"categoryAId"`
	CategoryBID uuid.UUID `gorm:"type:uuid;column:category_b_id;not null;uniqueIndex:idx_container_pair" json:"categoryBId"`

	Distance   float64 `gorm:"column:distance;not null" json:"distance"` // Actual separation distance in meters
	IsIsolated bool    `gorm:"column:is_isolated;not null" json:"isIsolated"`
	// MinRequiredDistance is null when the pair requires isolation.
	MinRequiredDistance *float64      `gorm:"column:min_required_distance" json:"minRequiredDistance"`
	Status              hazard.Status `gorm:"type:varchar(10);column:status;not null" json:"status"`
}

func (p *HazardPair) TableName() string {
	return "hazard_pairs"
}
