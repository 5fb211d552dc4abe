package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
)

// allowedContentTypes lists what each attachment kind may carry.
var allowedContentTypes = map[Kind][]string{
	KindSafetyDataSheet: {"application/pdf"},
	KindPhoto:           {"image/jpeg", "image/png", "image/webp"},
	KindPictogram:       {"image/png", "image/svg+xml"},
}

// Service coordinates attachment uploads: blob storage via the configured
// store, metadata via gorm.
type Service struct {
	db    *gorm.DB
	blobs BlobStore
}

func NewService(db *gorm.DB, blobs BlobStore) *Service {
	return &Service{db: db, blobs: blobs}
}

// Upload stores the file content and its metadata record. When containerID is
// set the container must exist; pictograms are not tied to a container.
func (s *Service) Upload(ctx context.Context, actor *model.User, containerID *uuid.UUID, kind Kind, filename string, reader io.Reader, size int64, contentType string) (*Attachment, error) {
	if actor == nil || !actor.Active {
		return nil, apperror.Forbiddenf("actor is not an active user")
	}
	if !kind.Valid() {
		return nil, apperror.Validationf("unknown attachment kind %q", kind)
	}
	if strings.TrimSpace(filename) == "" {
		return nil, apperror.Validationf("file name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !contentTypeAllowed(kind, contentType) {
		return nil, apperror.Validationf("content type %s is not allowed for %s attachments", contentType, kind)
	}

	if containerID != nil {
		var container model.Container
		err := s.db.WithContext(ctx).First(&container, "id = ?", *containerID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NotFoundf("container %s not found", *containerID)
			}
			return nil, fmt.Errorf("failed to load container: %w", err)
		}
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s%s", kind, id, filepath.Ext(filename))

	if err := s.blobs.Put(ctx, key, reader, contentType); err != nil {
		return nil, fmt.Errorf("blob store failed: %w", err)
	}

	url, err := s.blobs.PublicURL(ctx, key, 0)
	if err != nil {
		s.cleanupBlob(ctx, key)
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	attachment := &Attachment{
		ContainerID: containerID,
		Kind:        kind,
		FileName:    filename,
		Key:         key,
		URL:         url,
		Size:        size,
		ContentType: contentType,
		UploadedBy:  actor.ID,
	}
	attachment.ID = id
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		s.cleanupBlob(ctx, key)
		return nil, fmt.Errorf("failed to store attachment record: %w", err)
	}

	slog.InfoContext(ctx, "attachment uploaded", "id", id, "key", key, "kind", kind)
	return attachment, nil
}

// Download streams an attachment back along with its recorded content type.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	var attachment Attachment
	err := s.db.WithContext(ctx).First(&attachment, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperror.NotFoundf("attachment %s not found", key)
		}
		return nil, "", fmt.Errorf("failed to load attachment record: %w", err)
	}

	reader, err := s.blobs.Open(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("blob store failed: %w", err)
	}
	return reader, attachment.ContentType, nil
}

// ListForContainer returns the attachment records of one container.
func (s *Service) ListForContainer(ctx context.Context, containerID uuid.UUID) ([]Attachment, error) {
	var records []Attachment
	err := s.db.WithContext(ctx).
		Where("container_id = ?", containerID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return records, nil
}

// RemoveForContainer deletes all attachment records and blobs of a container.
func (s *Service) RemoveForContainer(ctx context.Context, containerID uuid.UUID) error {
	return s.RemoveForContainerInTx(ctx, s.db, containerID)
}

// RemoveForContainerInTx deletes a container's attachment records inside tx,
// then removes the blobs. Blob removal failures are logged, not fatal: the
// records are gone and the orphaned blobs are harmless.
func (s *Service) RemoveForContainerInTx(ctx context.Context, tx *gorm.DB, containerID uuid.UUID) error {
	var records []Attachment
	err := tx.WithContext(ctx).
		Where("container_id = ?", containerID).
		Find(&records).Error
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	err = tx.WithContext(ctx).
		Where("container_id = ?", containerID).
		Delete(&Attachment{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete attachment records: %w", err)
	}

	for _, record := range records {
		if err := s.blobs.Remove(ctx, record.Key); err != nil {
			slog.WarnContext(ctx, "failed to remove attachment blob", "key", record.Key, "error", err)
		}
	}
	return nil
}

func (s *Service) cleanupBlob(ctx context.Context, key string) {
	if err := s.blobs.Remove(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to cleanup orphaned blob", "key", key, "error", err)
	}
}

func contentTypeAllowed(kind Kind, contentType string) bool {
	for _, allowed := range allowedContentTypes[kind] {
		if allowed == contentType {
			return true
		}
	}
	return false
}
