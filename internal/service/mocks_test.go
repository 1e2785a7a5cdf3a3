package service

import (
	"context"
	"sort"
	"time"

	"priceboard/internal/domain"
	"priceboard/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is a shared in-memory backing store for the mock repositories,
// close enough to the SQL layer to exercise the category freshness rules.
type memStore struct {
	categories map[uuid.UUID]*domain.Category
	products   map[uuid.UUID]*domain.Product
	prices     map[uuid.UUID]*domain.Price

	// touched counts updated_at stamps per category.
	touched map[uuid.UUID]int
}

func newMemStore() *memStore {
	return &memStore{
		categories: make(map[uuid.UUID]*domain.Category),
		products:   make(map[uuid.UUID]*domain.Product),
		prices:     make(map[uuid.UUID]*domain.Price),
		touched:    make(map[uuid.UUID]int),
	}
}

func (s *memStore) touch(categoryID uuid.UUID) error {
	category, ok := s.categories[categoryID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	category.UpdatedAt = time.Now()
	s.touched[categoryID]++
	return nil
}

func (s *memStore) categoriesByPosition() []*domain.Category {
	out := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

type mockCategoryRepository struct {
	store *memStore
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.store.categories {
		if c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	clone := *category
	m.store.categories[category.ID] = &clone
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range m.store.categoriesByPosition() {
		if !includeInactive && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.store.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := m.store.categories[category.ID]
	if !ok {
		return repository.ErrCategoryNotFound
	}
	for _, c := range m.store.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	existing.Name = category.Name
	existing.BrandColor = category.BrandColor
	return m.store.touch(category.ID)
}

func (m *mockCategoryRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	existing, ok := m.store.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	existing.IsActive = !existing.IsActive
	if err := m.store.touch(id); err != nil {
		return nil, err
	}
	clone := *existing
	return &clone, nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.store.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	for pid, p := range m.store.products {
		if p.CategoryID != id {
			continue
		}
		for prID, pr := range m.store.prices {
			if pr.ProductID == pid {
				delete(m.store.prices, prID)
			}
		}
		delete(m.store.products, pid)
	}
	delete(m.store.categories, id)
	return nil
}

func (m *mockCategoryRepository) IDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for _, c := range m.store.categoriesByPosition() {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (m *mockCategoryRepository) NextPosition(ctx context.Context) (int, error) {
	next := 0
	for _, c := range m.store.categories {
		if c.Position >= next {
			next = c.Position + 1
		}
	}
	return next, nil
}

func (m *mockCategoryRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	for _, id := range orderedIDs {
		if _, ok := m.store.categories[id]; !ok {
			return 0, repository.ErrReorderConflict
		}
	}
	for i, id := range orderedIDs {
		m.store.categories[id].Position = i
	}
	return len(orderedIDs), nil
}

type mockProductRepository struct {
	store *memStore
}

func (m *mockProductRepository) CreateWithPrice(ctx context.Context, product *domain.Product, price *domain.Price) error {
	if _, ok := m.store.categories[product.CategoryID]; !ok {
		return repository.ErrCategoryNotFound
	}
	product.Position = 0
	for _, p := range m.store.products {
		if p.CategoryID == product.CategoryID && p.Position >= product.Position {
			product.Position = p.Position + 1
		}
	}
	productClone := *product
	priceClone := *price
	m.store.products[product.ID] = &productClone
	m.store.prices[price.ID] = &priceClone
	return m.store.touch(product.CategoryID)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *product
	return &clone, nil
}

func (m *mockProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range m.store.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *mockProductRepository) IDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for id, p := range m.store.products {
		if categoryID != nil && p.CategoryID != *categoryID {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	product, ok := m.store.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	for prID, pr := range m.store.prices {
		if pr.ProductID == id {
			delete(m.store.prices, prID)
		}
	}
	delete(m.store.products, id)
	return m.store.touch(product.CategoryID)
}

func (m *mockProductRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	for _, id := range orderedIDs {
		if _, ok := m.store.products[id]; !ok {
			return 0, repository.ErrReorderConflict
		}
	}
	for i, id := range orderedIDs {
		m.store.products[id].Position = i
	}
	return len(orderedIDs), nil
}

type mockPriceRepository struct {
	store *memStore
}

func (m *mockPriceRepository) owner(id uuid.UUID) (*domain.Price, *domain.Product, error) {
	price, ok := m.store.prices[id]
	if !ok {
		return nil, nil, repository.ErrPriceNotFound
	}
	product, ok := m.store.products[price.ProductID]
	if !ok {
		return nil, nil, repository.ErrProductNotFound
	}
	return price, product, nil
}

func (m *mockPriceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Price, error) {
	price, ok := m.store.prices[id]
	if !ok {
		return nil, repository.ErrPriceNotFound
	}
	clone := *price
	return &clone, nil
}

func (m *mockPriceRepository) AddToProduct(ctx context.Context, price *domain.Price, productName, productDescription string) error {
	product, ok := m.store.products[price.ProductID]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.Name = productName
	product.Description = productDescription
	clone := *price
	m.store.prices[price.ID] = &clone
	return m.store.touch(product.CategoryID)
}

func (m *mockPriceRepository) UpdateFull(ctx context.Context, price *domain.Price, productName, productDescription string) error {
	existing, product, err := m.owner(price.ID)
	if err != nil {
		return err
	}
	product.Name = productName
	product.Description = productDescription
	existing.Amount = price.Amount
	existing.Discount = price.Discount
	existing.Color = price.Color
	existing.Storage = price.Storage
	existing.Warranty = price.Warranty
	existing.Label = price.Label
	existing.Dimensions = price.Dimensions
	return m.store.touch(product.CategoryID)
}

func (m *mockPriceRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	existing, product, err := m.owner(id)
	if err != nil {
		return err
	}
	existing.Amount = amount
	return m.store.touch(product.CategoryID)
}

func (m *mockPriceRepository) UpdateDiscount(ctx context.Context, id uuid.UUID, discount *int) error {
	existing, product, err := m.owner(id)
	if err != nil {
		return err
	}
	existing.Discount = discount
	return m.store.touch(product.CategoryID)
}

func (m *mockPriceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, product, err := m.owner(id)
	if err != nil {
		return err
	}
	delete(m.store.prices, id)
	return m.store.touch(product.CategoryID)
}

type mockInvalidator struct {
	invalidations int
}

func (m *mockInvalidator) Invalidate(ctx context.Context) {
	m.invalidations++
}
