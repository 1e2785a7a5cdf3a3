package service

import (
	"context"

	"priceboard/internal/domain"
	"priceboard/internal/repository"
)

// CatalogSnapshot provides the catalog trees the read paths work on.
// Both reads return fresh copies; callers may mutate them freely.
type CatalogSnapshot interface {
	// PublicTree returns active categories only, briefly cached.
	PublicTree(ctx context.Context) (domain.Tree, error)
	// AdminTree returns everything, inactive categories included.
	AdminTree(ctx context.Context) (domain.Tree, error)
}

// TreeCache holds a recently-built public tree.
type TreeCache interface {
	Get(ctx context.Context) (domain.Tree, bool)
	Set(ctx context.Context, tree domain.Tree)
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	cache       TreeCache
}

// NewCatalogService creates a new instance of CatalogSnapshot
func NewCatalogService(catalogRepo repository.CatalogRepository, cache TreeCache) CatalogSnapshot {
	return &catalogService{
		catalogRepo: catalogRepo,
		cache:       cache,
	}
}

// PublicTree serves the end-user price list: active categories ordered by
// position, products ordered by position, newest price first. Cache-aside
// with a short TTL; mutations invalidate eagerly.
func (s *catalogService) PublicTree(ctx context.Context) (domain.Tree, error) {
	if tree, ok := s.cache.Get(ctx); ok {
		return tree, nil
	}

	tree, err := s.catalogRepo.Tree(ctx, false)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, tree)
	return tree, nil
}

// AdminTree serves the operator view, inactive categories included.
// Never cached; the operator always sees their own writes.
func (s *catalogService) AdminTree(ctx context.Context) (domain.Tree, error) {
	return s.catalogRepo.Tree(ctx, true)
}
