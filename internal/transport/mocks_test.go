package transport

import (
	"context"

	"priceboard/internal/domain"
	"priceboard/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// stubCatalog serves fixed trees.
type stubCatalog struct {
	public domain.Tree
	admin  domain.Tree
	err    error
}

func (s *stubCatalog) PublicTree(ctx context.Context) (domain.Tree, error) {
	return s.public, s.err
}

func (s *stubCatalog) AdminTree(ctx context.Context) (domain.Tree, error) {
	return s.admin, s.err
}

// stubPricing records the last call per operation and returns canned data.
type stubPricing struct {
	err error

	createdCategory  *domain.Category
	lastCategoryName string
	lastEdit         service.PriceEdit
	createdProduct   *domain.Product
	addedPrice       *domain.Price
	deletedIDs       []uuid.UUID
}

func (s *stubPricing) CreateCategory(ctx context.Context, name, brandColor string) (*domain.Category, error) {
	s.lastCategoryName = name
	return s.createdCategory, s.err
}

func (s *stubPricing) UpdateCategory(ctx context.Context, id uuid.UUID, name, brandColor string) (*domain.Category, error) {
	s.lastCategoryName = name
	return s.createdCategory, s.err
}

func (s *stubPricing) ToggleCategoryActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.createdCategory, s.err
}

func (s *stubPricing) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

func (s *stubPricing) CreateProductWithPrice(ctx context.Context, input service.CreateProductInput) (*domain.Product, error) {
	return s.createdProduct, s.err
}

func (s *stubPricing) AddPrice(ctx context.Context, input service.AddPriceInput) (*domain.Price, error) {
	return s.addedPrice, s.err
}

func (s *stubPricing) UpdatePrice(ctx context.Context, edit service.PriceEdit) (*domain.Price, error) {
	s.lastEdit = edit
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Price{ID: uuid.New(), Amount: decimal.NewFromInt(1)}, nil
}

func (s *stubPricing) DeletePrice(ctx context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

func (s *stubPricing) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	s.deletedIDs = append(s.deletedIDs, id)
	return s.err
}

// stubOrdering records the last reorder request.
type stubOrdering struct {
	err          error
	lastIDs      []uuid.UUID
	lastCategory *uuid.UUID
}

func (s *stubOrdering) ReorderCategories(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	s.lastIDs = orderedIDs
	if s.err != nil {
		return 0, s.err
	}
	return len(orderedIDs), nil
}

func (s *stubOrdering) ReorderProducts(ctx context.Context, categoryID *uuid.UUID, orderedIDs []uuid.UUID) (int, error) {
	s.lastCategory = categoryID
	s.lastIDs = orderedIDs
	if s.err != nil {
		return 0, s.err
	}
	return len(orderedIDs), nil
}

// stubAuth returns a fixed login outcome.
type stubAuth struct {
	token string
	admin *domain.Admin
	err   error
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (string, *domain.Admin, error) {
	return s.token, s.admin, s.err
}
