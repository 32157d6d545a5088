package handlers

import (
	"net/http"

	"github.com/kozaktomas/attendance-kiosk/internal/config"
	"github.com/kozaktomas/attendance-kiosk/internal/constants"
	"github.com/kozaktomas/attendance-kiosk/internal/kiosk"
)

// CatalogHandler serves the enrollment form options.
type CatalogHandler struct {
	config *config.Config
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cfg *config.Config) *CatalogHandler {
	return &CatalogHandler{config: cfg}
}

// CatalogResponse lists the form options and capture limits.
type CatalogResponse struct {
	Departments []string     `json:"departments"`
	Positions   []string     `json:"positions"`
	MinImages   int          `json:"min_images"`
	MaxImages   int          `json:"max_images"`
	AdminViews  []kiosk.View `json:"admin_views"`
}

// Get returns the catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, CatalogResponse{
		Departments: h.config.Catalog.Departments,
		Positions:   h.config.Catalog.Positions,
		MinImages:   constants.MinBatch,
		MaxImages:   constants.MaxBatch,
		AdminViews:  kiosk.AdminViews,
	})
}
