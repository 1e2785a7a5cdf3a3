package transport

import (
	"net/http"

	"priceboard/internal/middleware"
	"priceboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CategoryRequest carries category create/update fields
type CategoryRequest struct {
	Name       string `json:"name" validate:"required"`
	BrandColor string `json:"brand_color"`
}

// ReorderRequest is a full permutation of the ids currently in scope.
// CategoryID narrows a product reorder to one category; omitted, the
// whole catalog is the scope.
type ReorderRequest struct {
	OrderedIDs []uuid.UUID `json:"ordered_ids" validate:"required,min=1"`
	CategoryID *uuid.UUID  `json:"category_id,omitempty"`
}

// ReorderResponse reports how many rows moved
type ReorderResponse struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
}

// PriceFieldsRequest carries the variant fields of a price row
type PriceFieldsRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	Discount   *int            `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Color      string          `json:"color"`
	Storage    string          `json:"storage"`
	Warranty   string          `json:"warranty"`
	Label      string          `json:"label"`
	Dimensions string          `json:"dimensions"`
}

func (r PriceFieldsRequest) toFields() service.PriceFields {
	return service.PriceFields{
		Amount:     r.Amount,
		Discount:   r.Discount,
		Color:      r.Color,
		Storage:    r.Storage,
		Warranty:   r.Warranty,
		Label:      r.Label,
		Dimensions: r.Dimensions,
	}
}

// CreateProductRequest creates a product together with its first price
type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	PriceFieldsRequest
}

// EditProductRequest is shared by the add-price and full-edit routes:
// product name/description plus all price variant fields.
type EditProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	PriceFieldsRequest
}

// PartialPriceRequest is the inline-grid path: exactly one of amount or
// discount must be present.
type PartialPriceRequest struct {
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Discount *int             `json:"discount,omitempty"`
}

// MessageResponse is a short human-readable success message
type MessageResponse struct {
	Message string `json:"message"`
}

// AdminHandler handles HTTP requests for catalog administration
type AdminHandler struct {
	catalog  service.CatalogSnapshot
	pricing  service.PricingService
	ordering service.OrderingService
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	catalog service.CatalogSnapshot,
	pricing service.PricingService,
	ordering service.OrderingService,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		catalog:  catalog,
		pricing:  pricing,
		ordering: ordering,
		logger:   logger,
	}
}

// RegisterRoutes registers all admin routes behind the auth middleware
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/catalog", h.ListCatalog)

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", h.CreateCategory)
			r.Post("/reorder", h.ReorderCategories)
			r.Put("/{id}", h.UpdateCategory)
			r.Patch("/{id}/toggle", h.ToggleCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", h.CreateProduct)
			r.Post("/reorder", h.ReorderProducts)
			r.Post("/{id}/prices", h.AddPrice)
			r.Delete("/{id}", h.DeleteProduct)
		})

		r.Route("/prices", func(r chi.Router) {
			r.Put("/{id}", h.UpdatePriceFull)
			r.Patch("/{id}", h.UpdatePricePartial)
			r.Delete("/{id}", h.DeletePrice)
		})
	})
}

// ListCatalog returns the full tree, inactive categories included, with
// per-category product counts.
func (h *AdminHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.AdminTree(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "catalog fetch")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, newTreeResponse(tree))
}

// CreateCategory adds a category at the end of the display order
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.pricing.CreateCategory(r.Context(), req.Name, req.BrandColor)
	if err != nil {
		respondServiceError(w, h.logger, err, "category create")
		return
	}

	h.logger.Info("Category created", zap.String("category_id", category.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory renames a category / changes its brand color
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.pricing.UpdateCategory(r.Context(), id, req.Name, req.BrandColor)
	if err != nil {
		respondServiceError(w, h.logger, err, "category update")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// ToggleCategory flips a category's public visibility
func (h *AdminHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	category, err := h.pricing.ToggleCategoryActive(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "category toggle")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category and everything under it
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.pricing.DeleteCategory(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "category delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReorderCategories applies a full permutation of all category ids
func (h *AdminHandler) ReorderCategories(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.ordering.ReorderCategories(r.Context(), req.OrderedIDs)
	if err != nil {
		respondServiceError(w, h.logger, err, "category reorder")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ReorderResponse{
		Message:      "Category order updated successfully",
		UpdatedCount: updated,
	})
}

// ReorderProducts applies a full permutation of the products in scope
func (h *AdminHandler) ReorderProducts(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !h.decode(w, r, &req) {
		return
	}

	updated, err := h.ordering.ReorderProducts(r.Context(), req.CategoryID, req.OrderedIDs)
	if err != nil {
		respondServiceError(w, h.logger, err, "product reorder")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ReorderResponse{
		Message:      "Product order updated successfully",
		UpdatedCount: updated,
	})
}

// CreateProduct inserts a product and its first price atomically
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := h.pricing.CreateProductWithPrice(r.Context(), service.CreateProductInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.toFields(),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "product create")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// AddPrice appends another labeled price variant to an existing product
func (h *AdminHandler) AddPrice(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req EditProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, err := h.pricing.AddPrice(r.Context(), service.AddPriceInput{
		ProductID:          productID,
		ProductName:        req.Name,
		ProductDescription: req.Description,
		Price:              req.toFields(),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "price add")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, price)
}

// UpdatePriceFull applies a full edit: product fields plus all price fields
func (h *AdminHandler) UpdatePriceFull(w http.ResponseWriter, r *http.Request) {
	priceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req EditProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, err := h.pricing.UpdatePrice(r.Context(), service.FullPriceEdit{
		PriceID:            priceID,
		ProductName:        req.Name,
		ProductDescription: req.Description,
		Price:              req.toFields(),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "price update")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, price)
}

// UpdatePricePartial is the inline-grid path: amount only or discount
// only, mapped onto the corresponding edit shape.
func (h *AdminHandler) UpdatePricePartial(w http.ResponseWriter, r *http.Request) {
	priceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req PartialPriceRequest
	if !h.decode(w, r, &req) {
		return
	}

	var edit service.PriceEdit
	switch {
	case req.Amount != nil && req.Discount == nil:
		edit = service.AmountOnlyEdit{PriceID: priceID, Amount: *req.Amount}
	case req.Amount == nil:
		edit = service.DiscountOnlyEdit{PriceID: priceID, Discount: req.Discount}
	default:
		middleware.RespondWithError(w, http.StatusBadRequest, "supply either amount or discount, not both")
		return
	}

	if _, err := h.pricing.UpdatePrice(r.Context(), edit); err != nil {
		respondServiceError(w, h.logger, err, "price update")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Price updated successfully"})
}

// DeletePrice removes a single price variant
func (h *AdminHandler) DeletePrice(w http.ResponseWriter, r *http.Request) {
	priceID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.pricing.DeletePrice(r.Context(), priceID); err != nil {
		respondServiceError(w, h.logger, err, "price delete")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct removes a product together with all its prices
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.pricing.DeleteProduct(r.Context(), productID); err != nil {
		respondServiceError(w, h.logger, err, "product delete")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"})
}

// decode parses and validates a JSON body, writing the error response
// itself on failure.
func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		h.logger.Debug("Request validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// pathID parses the {id} path parameter.
func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
