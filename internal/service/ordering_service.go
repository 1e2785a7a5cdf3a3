package service

import (
	"context"
	"fmt"

	"priceboard/internal/repository"

	"github.com/google/uuid"
)

// MaxReorderBatch is a defensive cap on reorder payloads; a legitimate
// drag-and-drop never produces more rows than the catalog holds.
const MaxReorderBatch = 1000

// OrderingService assigns display positions for categories and products.
// A reorder is index-based: the n-th id in the request ends up with
// position n, wholesale, inside one transaction.
type OrderingService interface {
	ReorderCategories(ctx context.Context, orderedIDs []uuid.UUID) (int, error)
	// ReorderProducts reorders the products of one category, or the whole
	// catalog when categoryID is nil.
	ReorderProducts(ctx context.Context, categoryID *uuid.UUID, orderedIDs []uuid.UUID) (int, error)
}

type orderingService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	invalidator  CacheInvalidator
}

// NewOrderingService creates a new instance of OrderingService
func NewOrderingService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	invalidator CacheInvalidator,
) OrderingService {
	return &orderingService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		invalidator:  invalidator,
	}
}

// ReorderCategories applies a full permutation of all category ids.
func (s *orderingService) ReorderCategories(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	scope, err := s.categoryRepo.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load reorder scope: %w", err)
	}

	if err := validateReorder(orderedIDs, scope); err != nil {
		return 0, err
	}

	updated, err := s.categoryRepo.Reorder(ctx, orderedIDs)
	if err != nil {
		return 0, err
	}

	s.invalidator.Invalidate(ctx)
	return updated, nil
}

// ReorderProducts applies a full permutation of the products in scope.
func (s *orderingService) ReorderProducts(ctx context.Context, categoryID *uuid.UUID, orderedIDs []uuid.UUID) (int, error) {
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			return 0, err
		}
	}

	scope, err := s.productRepo.IDs(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to load reorder scope: %w", err)
	}

	if err := validateReorder(orderedIDs, scope); err != nil {
		return 0, err
	}

	updated, err := s.productRepo.Reorder(ctx, orderedIDs)
	if err != nil {
		return 0, err
	}

	s.invalidator.Invalidate(ctx)
	return updated, nil
}

// validateReorder rejects bad permutations before any row is written:
// empty or oversized batches, duplicate ids, ids outside the scope, and
// lists that omit part of the scope (a stale client view).
func validateReorder(orderedIDs, scope []uuid.UUID) error {
	if len(orderedIDs) == 0 {
		return &ValidationError{Field: "ordered_ids", Message: "must not be empty"}
	}
	if len(orderedIDs) > MaxReorderBatch {
		return ErrReorderTooLarge
	}

	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateReference
		}
		seen[id] = struct{}{}
	}

	members := make(map[uuid.UUID]struct{}, len(scope))
	for _, id := range scope {
		members[id] = struct{}{}
	}

	for _, id := range orderedIDs {
		if _, ok := members[id]; !ok {
			return ErrInvalidReference
		}
	}

	// Unlisted members would keep arbitrary positions; reject instead of
	// silently corrupting the display order.
	if len(orderedIDs) < len(scope) {
		return ErrPartialReorder
	}

	return nil
}
