package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/approval/model"
)

// ContainerRepository handles persistence for containers and their derived
// hazard pairs. Mutating methods run inside a caller-supplied transaction.
type ContainerRepository interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, container *model.Container) error
	GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Container, error)
	GetByCodeInTx(ctx context.Context, tx *gorm.DB, code string) (*model.Container, error)
	List(ctx context.Context, filter model.ContainerFilter) (*model.ContainerListResult, error)

	// UpdateStatusInTx applies updates to the container only when its stored
	// status equals expected (compare-and-set). Returns the number of rows
	// affected; zero means the precondition failed or the container is gone.
	UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected model.ContainerStatus, updates map[string]any) (int64, error)

	// ReplacePairsInTx discards every stored pair of the container and writes
	// the new set in one shot.
	ReplacePairsInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID, pairs []model.HazardPair) error

	// DeleteInTx removes the container together with all its hazard pairs.
	DeleteInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

// CategoryRepository reads hazard category reference data.
type CategoryRepository interface {
	GetByIDsInTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.HazardCategory, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.HazardCategory, error)
	ListAll(ctx context.Context) ([]model.HazardCategory, error)
}

// DeletionRequestRepository handles persistence for deletion requests.
type DeletionRequestRepository interface {
	CreateInTx(ctx context.Context, tx *gorm.DB, request *model.DeletionRequest) error
	GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DeletionRequest, error)
	GetOpenByContainerIDInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID) (*model.DeletionRequest, error)
	List(ctx context.Context, containerID *uuid.UUID) ([]model.DeletionRequest, error)

	// UpdateStatusInTx applies updates only when the stored status is one of
	// the expected values. Returns rows affected.
	UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected []model.DeletionRequestStatus, updates map[string]any) (int64, error)
}
