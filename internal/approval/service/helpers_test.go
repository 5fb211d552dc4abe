package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/attachments"
	"github.com/OpenCCS/ccs/internal/hazard"
)

// newTestDB opens an in-memory sqlite database with the full schema and the
// standard GHS categories seeded.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	err = db.AutoMigrate(
		&model.User{},
		&model.HazardCategory{},
		&model.Container{},
		&model.HazardPair{},
		&model.DeletionRequest{},
		&attachments.Attachment{},
	)
	require.NoError(t, err, "migrate schema")

	categories := model.DefaultHazardCategories()
	require.NoError(t, db.Create(&categories).Error, "seed categories")

	return db
}

// categoryIDs returns a code → id map of the seeded GHS categories.
func categoryIDs(t *testing.T, db *gorm.DB) map[string]uuid.UUID {
	t.Helper()

	var categories []model.HazardCategory
	require.NoError(t, db.Find(&categories).Error)

	ids := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		ids[c.Code] = c.ID
	}
	return ids
}

func seedUser(t *testing.T, db *gorm.DB, role model.Role) *model.User {
	t.Helper()

	user := &model.User{
		Email:       uuid.NewString() + "@example.com",
		DisplayName: "Test " + string(role),
		Role:        role,
		Department:  "Processing",
		Active:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newContainerService(db *gorm.DB) *ContainerService {
	evaluator := hazard.NewEvaluator(hazard.DefaultRuleTable(hazard.DefaultTableConfig()))
	return NewContainerService(db, evaluator, NewGormContainerRepository(db), NewGormCategoryRepository(db))
}

func newDeletionService(db *gorm.DB) *DeletionService {
	remover := attachments.NewService(db, newMemoryBlobs())
	return NewDeletionService(db, NewGormContainerRepository(db), NewGormDeletionRequestRepository(db), remover)
}

// memoryBlobs is a map-backed attachments.BlobStore.
type memoryBlobs struct {
	objects map[string][]byte
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: make(map[string][]byte)}
}

func (m *memoryBlobs) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryBlobs) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryBlobs) Remove(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryBlobs) PublicURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "/api/attachments/" + key, nil
}

// safeSubmission builds a valid two-hazard submission (Serious Health Hazard
// + Environmental Hazard at a safe distance).
func safeSubmission(ids map[string]uuid.UUID, code string) *model.SubmitContainerDTO {
	return &model.SubmitContainerDTO{
		Department:    "Processing",
		Location:      "Warehouse B",
		ContainerCode: code,
		ContainerType: "20ft",
		HazardCategoryIDs: []uuid.UUID{
			ids[hazard.CodeSeriousHealth],
			ids[hazard.CodeEnvironmental],
		},
		PairDistances: []model.PairDistanceDTO{
			{CategoryAID: ids[hazard.CodeSeriousHealth], CategoryBID: ids[hazard.CodeEnvironmental], Distance: 6},
		},
	}
}
