package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/utils"
)

// GormContainerRepository is the GORM implementation of ContainerRepository.
type GormContainerRepository struct {
	db *gorm.DB
}

func NewGormContainerRepository(db *gorm.DB) *GormContainerRepository {
	return &GormContainerRepository{db: db}
}

func (r *GormContainerRepository) CreateInTx(ctx context.Context, tx *gorm.DB, container *model.Container) error {
	return tx.WithContext(ctx).Create(container).Error
}

func (r *GormContainerRepository) GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Container, error) {
	var c model.Container
	if err := tx.WithContext(ctx).Preload("Pairs").First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormContainerRepository) GetByCodeInTx(ctx context.Context, tx *gorm.DB, code string) (*model.Container, error) {
	var c model.Container
	if err := tx.WithContext(ctx).First(&c, "container_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormContainerRepository) List(ctx context.Context, filter model.ContainerFilter) (*model.ContainerListResult, error) {
	offset, limit := utils.PageWindow(filter.Offset, filter.Limit)

	query := r.db.WithContext(ctx).Model(&model.Container{})
	if filter.Department != nil {
		query = query.Where("department = ?", *filter.Department)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.SubmittedBy != nil {
		query = query.Where("submitted_by = ?", *filter.SubmittedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var containers []model.Container
	err := query.Preload("Pairs").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&containers).Error
	if err != nil {
		return nil, err
	}

	return &model.ContainerListResult{
		TotalCount: total,
		Containers: containers,
		Offset:     offset,
		Limit:      limit,
	}, nil
}

func (r *GormContainerRepository) UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected model.ContainerStatus, updates map[string]any) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Container{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *GormContainerRepository) ReplacePairsInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID, pairs []model.HazardPair) error {
	if err := tx.WithContext(ctx).Where("container_id = ?", containerID).Delete(&model.HazardPair{}).Error; err != nil {
		return err
	}
	if len(pairs) == 0 {
		return nil
	}
	for i := range pairs {
		pairs[i].ContainerID = containerID
	}
	return tx.WithContext(ctx).Create(&pairs).Error
}

func (r *GormContainerRepository) DeleteInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("container_id = ?", id).Delete(&model.HazardPair{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Container{}, "id = ?", id).Error
}

// GormCategoryRepository is the GORM implementation of CategoryRepository.
type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) GetByIDsInTx(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]model.HazardCategory, error) {
	var categories []model.HazardCategory
	if err := tx.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *GormCategoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.HazardCategory, error) {
	return r.GetByIDsInTx(ctx, r.db, ids)
}

func (r *GormCategoryRepository) ListAll(ctx context.Context) ([]model.HazardCategory, error) {
	var categories []model.HazardCategory
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GormDeletionRequestRepository is the GORM implementation of
// DeletionRequestRepository.
type GormDeletionRequestRepository struct {
	db *gorm.DB
}

func NewGormDeletionRequestRepository(db *gorm.DB) *GormDeletionRequestRepository {
	return &GormDeletionRequestRepository{db: db}
}

func (r *GormDeletionRequestRepository) CreateInTx(ctx context.Context, tx *gorm.DB, request *model.DeletionRequest) error {
	return tx.WithContext(ctx).Create(request).Error
}

func (r *GormDeletionRequestRepository) GetByIDInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.DeletionRequest, error) {
	var req model.DeletionRequest
	if err := tx.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormDeletionRequestRepository) GetOpenByContainerIDInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID) (*model.DeletionRequest, error) {
	var req model.DeletionRequest
	err := tx.WithContext(ctx).
		Where("container_id = ? AND status IN ?", containerID,
			[]model.DeletionRequestStatus{model.DeletionStatusPending, model.DeletionStatusAdminReviewed}).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormDeletionRequestRepository) List(ctx context.Context, containerID *uuid.UUID) ([]model.DeletionRequest, error) {
	query := r.db.WithContext(ctx).Model(&model.DeletionRequest{})
	if containerID != nil {
		query = query.Where("container_id = ?", *containerID)
	}
	var requests []model.DeletionRequest
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *GormDeletionRequestRepository) UpdateStatusInTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected []model.DeletionRequestStatus, updates map[string]any) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.DeletionRequest{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	return result.RowsAffected, result.Error
}
