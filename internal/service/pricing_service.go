package service

import (
	"context"
	"strings"
	"time"

	"priceboard/internal/domain"
	"priceboard/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CacheInvalidator drops the cached public catalog after a successful
// mutation. Invalidation is best-effort; a failed drop only means the
// public view stays stale until the TTL expires.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// PriceFields carries the variant fields of a price row.
type PriceFields struct {
	Amount     decimal.Decimal
	Discount   *int
	Color      string
	Storage    string
	Warranty   string
	Label      string
	Dimensions string
}

// CreateProductInput creates a product together with its first price.
type CreateProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       PriceFields
}

// AddPriceInput appends another labeled price variant to a product and
// refreshes the product's name/description from the edit form.
type AddPriceInput struct {
	ProductID          uuid.UUID
	ProductName        string
	ProductDescription string
	Price              PriceFields
}

// PriceEdit is the tagged update-price payload. Exactly one of the three
// shapes is used per call, so each validation path stays independent.
type PriceEdit interface{ priceEdit() }

// FullPriceEdit updates the product row and every price field together.
type FullPriceEdit struct {
	PriceID            uuid.UUID
	ProductName        string
	ProductDescription string
	Price              PriceFields
}

// AmountOnlyEdit is the inline-grid path that changes just the amount.
type AmountOnlyEdit struct {
	PriceID uuid.UUID
	Amount  decimal.Decimal
}

// DiscountOnlyEdit is the inline-grid path that changes just the discount.
// A nil discount clears it.
type DiscountOnlyEdit struct {
	PriceID  uuid.UUID
	Discount *int
}

func (FullPriceEdit) priceEdit()    {}
func (AmountOnlyEdit) priceEdit()   {}
func (DiscountOnlyEdit) priceEdit() {}

// PricingService owns every catalog mutation that must stay consistent
// with the owning category's updated_at freshness signal. All multi-row
// effects are atomic at the repository layer.
type PricingService interface {
	CreateCategory(ctx context.Context, name, brandColor string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name, brandColor string) (*domain.Category, error)
	ToggleCategoryActive(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProductWithPrice(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	AddPrice(ctx context.Context, input AddPriceInput) (*domain.Price, error)
	UpdatePrice(ctx context.Context, edit PriceEdit) (*domain.Price, error)
	DeletePrice(ctx context.Context, id uuid.UUID) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type pricingService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	priceRepo    repository.PriceRepository
	invalidator  CacheInvalidator
}

// NewPricingService creates a new instance of PricingService
func NewPricingService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	priceRepo repository.PriceRepository,
	invalidator CacheInvalidator,
) PricingService {
	return &pricingService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		priceRepo:    priceRepo,
		invalidator:  invalidator,
	}
}

// CreateCategory appends a new category at the end of the display order.
func (s *pricingService) CreateCategory(ctx context.Context, name, brandColor string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}

	position, err := s.categoryRepo.NextPosition(ctx)
	if err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:         uuid.New(),
		Name:       name,
		BrandColor: brandColor,
		Position:   position,
		IsActive:   true,
		UpdatedAt:  time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx)
	return category, nil
}

// UpdateCategory renames a category and changes its brand color.
func (s *pricingService) UpdateCategory(ctx context.Context, id uuid.UUID, name, brandColor string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}

	category := &domain.Category{ID: id, Name: name, BrandColor: brandColor}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	updated, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx)
	return updated, nil
}

// ToggleCategoryActive flips visibility on the public price list. The
// category and everything under it stays editable in the admin view.
func (s *pricingService) ToggleCategoryActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.categoryRepo.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category and cascades to its products and prices.
func (s *pricingService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx)
	return nil
}

// CreateProductWithPrice inserts a product and its first price atomically.
func (s *pricingService) CreateProductWithPrice(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if err := validatePriceFields(input.Price); err != nil {
		return nil, err
	}

	// Reject unknown categories before opening the write transaction.
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		CategoryID:  input.CategoryID,
	}
	price := newPrice(product.ID, input.Price)

	if err := s.productRepo.CreateWithPrice(ctx, product, price); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx)
	return product, nil
}

// AddPrice appends another price variant to an existing product.
func (s *pricingService) AddPrice(ctx context.Context, input AddPriceInput) (*domain.Price, error) {
	if strings.TrimSpace(input.ProductName) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if err := validatePriceFields(input.Price); err != nil {
		return nil, err
	}

	price := newPrice(input.ProductID, input.Price)
	if err := s.priceRepo.AddToProduct(ctx, price, strings.TrimSpace(input.ProductName), input.ProductDescription); err != nil {
		return nil, err
	}

	s.invalidator.Invalidate(ctx)
	return price, nil
}

// UpdatePrice dispatches on the edit shape. Every shape stamps the owning
// category's updated_at inside the same transaction as the row change,
// including the lightweight single-column paths.
func (s *pricingService) UpdatePrice(ctx context.Context, edit PriceEdit) (*domain.Price, error) {
	switch e := edit.(type) {
	case FullPriceEdit:
		if strings.TrimSpace(e.ProductName) == "" {
			return nil, &ValidationError{Field: "name", Message: "must not be empty"}
		}
		if err := validatePriceFields(e.Price); err != nil {
			return nil, err
		}

		price := newPrice(uuid.Nil, e.Price)
		price.ID = e.PriceID
		if err := s.priceRepo.UpdateFull(ctx, price, strings.TrimSpace(e.ProductName), e.ProductDescription); err != nil {
			return nil, err
		}

	case AmountOnlyEdit:
		if err := validateAmount(e.Amount); err != nil {
			return nil, err
		}
		if err := s.priceRepo.UpdateAmount(ctx, e.PriceID, e.Amount); err != nil {
			return nil, err
		}

	case DiscountOnlyEdit:
		if err := validateDiscount(e.Discount); err != nil {
			return nil, err
		}
		if err := s.priceRepo.UpdateDiscount(ctx, e.PriceID, e.Discount); err != nil {
			return nil, err
		}

	default:
		return nil, &ValidationError{Field: "edit", Message: "unsupported edit shape"}
	}

	s.invalidator.Invalidate(ctx)
	return s.priceRepo.FindByID(ctx, priceEditID(edit))
}

// DeletePrice removes a single price variant.
func (s *pricingService) DeletePrice(ctx context.Context, id uuid.UUID) error {
	if err := s.priceRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx)
	return nil
}

// DeleteProduct removes a product together with all its prices.
func (s *pricingService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidator.Invalidate(ctx)
	return nil
}

func priceEditID(edit PriceEdit) uuid.UUID {
	switch e := edit.(type) {
	case FullPriceEdit:
		return e.PriceID
	case AmountOnlyEdit:
		return e.PriceID
	case DiscountOnlyEdit:
		return e.PriceID
	}
	return uuid.Nil
}

func newPrice(productID uuid.UUID, fields PriceFields) *domain.Price {
	label := strings.TrimSpace(fields.Label)
	if label == "" {
		label = domain.PrimaryPriceLabel
	}
	return &domain.Price{
		ID:         uuid.New(),
		ProductID:  productID,
		Amount:     fields.Amount,
		Discount:   fields.Discount,
		Color:      fields.Color,
		Storage:    fields.Storage,
		Warranty:   fields.Warranty,
		Label:      label,
		Dimensions: fields.Dimensions,
		CreatedAt:  time.Now(),
	}
}

func validatePriceFields(fields PriceFields) error {
	if err := validateAmount(fields.Amount); err != nil {
		return err
	}
	return validateDiscount(fields.Discount)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return &ValidationError{Field: "amount", Message: "must be a positive number"}
	}
	return nil
}

func validateDiscount(discount *int) error {
	if discount != nil && (*discount < 0 || *discount > 100) {
		return &ValidationError{Field: "discount", Message: "must be between 0 and 100"}
	}
	return nil
}
