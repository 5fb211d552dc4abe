package router

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/OpenCCS/ccs/internal/apperror"
	"github.com/OpenCCS/ccs/internal/approval/model"
	"github.com/OpenCCS/ccs/internal/approval/service"
	"github.com/OpenCCS/ccs/internal/database"
	"github.com/OpenCCS/ccs/internal/hazard"
)

// CatalogRouter serves the hazard reference data, the public compatibility
// preview and the health endpoint.
type CatalogRouter struct {
	db         *gorm.DB
	evaluator  *hazard.Evaluator
	categories service.CategoryRepository
}

func NewCatalogRouter(db *gorm.DB, evaluator *hazard.Evaluator, categories service.CategoryRepository) *CatalogRouter {
	return &CatalogRouter{
		db:         db,
		evaluator:  evaluator,
		categories: categories,
	}
}

// Register wires the catalog endpoints onto the mux.
func (cr *CatalogRouter) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/hazard-categories", cr.HandleListHazardCategories)
	mux.HandleFunc("GET /api/compatibility/preview", cr.HandleCompatibilityPreview)
	mux.HandleFunc("GET /health", cr.HandleHealth)
}

// HandleListHazardCategories handles GET /api/hazard-categories requests
func (cr *CatalogRouter) HandleListHazardCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := cr.categories.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

type previewResponse struct {
	CategoryA string         `json:"categoryA"`
	CategoryB string         `json:"categoryB"`
	Distance  float64        `json:"distance"`
	Verdict   hazard.Verdict `json:"verdict"`
}

// HandleCompatibilityPreview handles GET /api/compatibility/preview requests
// Required Query Params: categoryAId, categoryBId, distance
//
// The preview evaluates a single pair without touching any stored container,
// so submitters can check distances before submitting.
func (cr *CatalogRouter) HandleCompatibilityPreview(w http.ResponseWriter, r *http.Request) {
	categoryAID, err := queryUUID(r, "categoryAId")
	if err != nil {
		writeError(w, err)
		return
	}
	categoryBID, err := queryUUID(r, "categoryBId")
	if err != nil {
		writeError(w, err)
		return
	}

	distanceStr := r.URL.Query().Get("distance")
	if distanceStr == "" {
		writeError(w, apperror.Validationf("missing required query parameter: distance"))
		return
	}
	distance, err := strconv.ParseFloat(distanceStr, 64)
	if err != nil {
		writeError(w, apperror.Validationf("invalid distance: %v", err))
		return
	}

	categories, err := cr.categories.GetByIDs(r.Context(), []uuid.UUID{categoryAID, categoryBID})
	if err != nil {
		writeError(w, err)
		return
	}
	codeByID := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		codeByID[c.ID] = c.Code
	}
	codeA, okA := codeByID[categoryAID]
	codeB, okB := codeByID[categoryBID]
	if !okA || !okB {
		writeError(w, apperror.NotFoundf("hazard category not found"))
		return
	}

	verdict := cr.evaluator.Evaluate(codeA, codeB, distance)
	writeJSON(w, http.StatusOK, previewResponse{
		CategoryA: codeA,
		CategoryB: codeB,
		Distance:  distance,
		Verdict:   verdict,
	})
}

type healthResponse struct {
	Status     string `json:"status"`
	Containers int64  `json:"containers"`
	Categories int64  `json:"categories"`
}

// HandleHealth handles GET /health requests
func (cr *CatalogRouter) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := database.HealthCheck(cr.db); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}

	var containers, categories int64
	if err := cr.db.WithContext(r.Context()).Model(&model.Container{}).Count(&containers).Error; err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	if err := cr.db.WithContext(r.Context()).Model(&model.HazardCategory{}).Count(&categories).Error; err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "healthy",
		Containers: containers,
		Categories: categories,
	})
}

func queryUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, apperror.Validationf("missing required query parameter: %s", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validationf("invalid %s: %v", name, err)
	}
	return id, nil
}
