package transport

import (
	"net/http"

	"priceboard/internal/middleware"
	"priceboard/internal/search"
	"priceboard/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the public, read-only price list.
type CatalogHandler struct {
	catalog service.CatalogSnapshot
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogSnapshot, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers the public catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/catalog", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/search", h.Search)
	})
}

// List returns active categories with their products and prices, in
// display order.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.PublicTree(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog fetch")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newTreeResponse(tree))
}

// SearchResponse wraps the capped preview and, when requested, the
// filtered tree for the apply-as-filter mode.
type SearchResponse struct {
	Preview  search.RankedResults `json:"preview"`
	Filtered []CategoryResponse   `json:"filtered,omitempty"`
}

// Search runs the free-text engine over the active tree. ?mode=filter
// additionally returns the rewritten tree with non-matching products and
// empty categories dropped.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	tree, err := h.catalog.PublicTree(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog search")
		return
	}

	resp := SearchResponse{Preview: search.Search(term, tree)}
	if r.URL.Query().Get("mode") == "filter" {
		resp.Filtered = newTreeResponse(search.FilterTree(term, tree))
	}

	middleware.RespondWithJSON(w, http.StatusOK, resp)
}
