package attachments

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
)

// memoryBlobStore implements BlobStore for testing
type memoryBlobStore struct {
	blobs       map[string][]byte
	urlErr      error
	removedKeys []string
}

func newMemoryBlobStore() *memoryBlobStore {
	return &memoryBlobStore{blobs: make(map[string][]byte)}
}

func (m *memoryBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	content, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.blobs[key] = content
	return nil
}

func (m *memoryBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	content, ok := m.blobs[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *memoryBlobStore) Remove(ctx context.Context, key string) error {
	m.removedKeys = append(m.removedKeys, key)
	delete(m.blobs, key)
	return nil
}

func (m *memoryBlobStore) PublicURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "/api/attachments/" + key, nil
}

func setup(t *testing.T) (*gorm.DB, *memoryBlobStore, *Service, *model.User, *model.Container) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Container{}, &Attachment{}))

	user := &model.User{
		Email:       "submitter@example.com",
		DisplayName: "Submitter",
		Role:        model.RoleSubmitter,
		Active:      true,
	}
	require.NoError(t, db.Create(user).Error)

	container := &model.Container{
		Department:    "Processing",
		Location:      "Warehouse A",
		SubmittedBy:   user.ID,
		ContainerCode: "CNT-ATT",
		ContainerType: "20ft",
		Status:        model.ContainerStatusPendingReview,
	}
	require.NoError(t, db.Create(container).Error)

	blobs := newMemoryBlobStore()
	return db, blobs, NewService(db, blobs), user, container
}

func TestServiceUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores blob and record", func(t *testing.T) {
		_, blobs, service, user, container := setup(t)

		content := []byte("pdf bytes")
		attachment, err := service.Upload(ctx, user, &container.ID, KindSafetyDataSheet,
			"acetone-sds.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf")
		require.NoError(t, err)

		assert.Equal(t, "acetone-sds.pdf", attachment.FileName)
		assert.Equal(t, KindSafetyDataSheet, attachment.Kind)
		assert.Equal(t, "/api/attachments/"+attachment.Key, attachment.URL)
		assert.Equal(t, content, blobs.blobs[attachment.Key])
	})

	t.Run("rejects disallowed content type", func(t *testing.T) {
		_, _, service, user, container := setup(t)

		_, err := service.Upload(ctx, user, &container.ID, KindSafetyDataSheet,
			"sds.exe", bytes.NewReader([]byte("x")), 1, "application/octet-stream")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("rejects unknown container", func(t *testing.T) {
		_, _, service, user, _ := setup(t)

		unknown := uuid.New()
		_, err := service.Upload(ctx, user, &unknown, KindPhoto,
			"photo.png", bytes.NewReader([]byte("x")), 1, "image/png")
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("pictograms need no container", func(t *testing.T) {
		_, _, service, user, _ := setup(t)

		attachment, err := service.Upload(ctx, user, nil, KindPictogram,
			"ghs02.png", bytes.NewReader([]byte("png")), 3, "image/png")
		require.NoError(t, err)
		assert.Nil(t, attachment.ContainerID)
	})

	t.Run("cleans up blob when URL generation fails", func(t *testing.T) {
		_, blobs, service, user, container := setup(t)
		blobs.urlErr = io.ErrUnexpectedEOF

		_, err := service.Upload(ctx, user, &container.ID, KindPhoto,
			"photo.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg")
		require.Error(t, err)
		require.Len(t, blobs.removedKeys, 1)
		assert.Empty(t, blobs.blobs)
	})
}

func TestServiceDownload(t *testing.T) {
	ctx := context.Background()
	_, _, service, user, container := setup(t)

	content := []byte("image bytes")
	attachment, err := service.Upload(ctx, user, &container.ID, KindPhoto,
		"photo.jpg", bytes.NewReader(content), int64(len(content)), "image/jpeg")
	require.NoError(t, err)

	reader, contentType, err := service.Download(ctx, attachment.Key)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", contentType)
	got, _ := io.ReadAll(reader)
	assert.Equal(t, content, got)

	_, _, err = service.Download(ctx, "photo/missing.jpg")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestServiceRemoveForContainer(t *testing.T) {
	ctx := context.Background()
	db, blobs, service, user, container := setup(t)

	for _, name := range []string{"a.jpg", "b.jpg"} {
		_, err := service.Upload(ctx, user, &container.ID, KindPhoto,
			name, bytes.NewReader([]byte("x")), 1, "image/jpeg")
		require.NoError(t, err)
	}

	require.NoError(t, service.RemoveForContainer(ctx, container.ID))

	records, err := service.ListForContainer(ctx, container.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, blobs.blobs)

	var count int64
	require.NoError(t, db.Model(&Attachment{}).Count(&count).Error)
	assert.Zero(t, count)
}
