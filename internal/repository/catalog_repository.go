package repository

import (
	"context"
	"database/sql"
	"fmt"

	"priceboard/internal/domain"

	"github.com/google/uuid"
)

// CatalogRepository reads the whole catalog into the in-memory tree the
// search engine and the operator views work on.
type CatalogRepository interface {
	Tree(ctx context.Context, includeInactive bool) (domain.Tree, error)
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// Tree loads categories in position order, their products in position
// order, and each product's prices newest first, so the first price of a
// product is its main price. It is a read-only snapshot; callers never
// mutate shared state through it.
func (r *catalogRepository) Tree(ctx context.Context, includeInactive bool) (domain.Tree, error) {
	categoryQuery := fmt.Sprintf(`SELECT %s FROM categories ORDER BY position ASC`, categoryColumns)
	if !includeInactive {
		categoryQuery = fmt.Sprintf(`SELECT %s FROM categories WHERE is_active = TRUE ORDER BY position ASC`, categoryColumns)
	}

	rows, err := r.db.QueryContext(ctx, categoryQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	defer rows.Close()

	tree := domain.Tree{}
	categoryIndex := map[uuid.UUID]int{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categoryIndex[category.ID] = len(tree)
		tree = append(tree, domain.CategoryNode{Category: *category, Products: []domain.ProductNode{}})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	productRows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM products ORDER BY category_id, position ASC
	`, productColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer productRows.Close()

	productIndex := map[uuid.UUID][2]int{}
	for productRows.Next() {
		product, err := scanProduct(productRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		ci, ok := categoryIndex[product.CategoryID]
		if !ok {
			// Category filtered out (inactive); skip its products.
			continue
		}
		productIndex[product.ID] = [2]int{ci, len(tree[ci].Products)}
		tree[ci].Products = append(tree[ci].Products, domain.ProductNode{Product: *product, Prices: []domain.Price{}})
	}
	if err = productRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	priceRows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM prices ORDER BY product_id, created_at DESC
	`, priceColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}
	defer priceRows.Close()

	for priceRows.Next() {
		price, err := scanPrice(priceRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		loc, ok := productIndex[price.ProductID]
		if !ok {
			continue
		}
		node := &tree[loc[0]].Products[loc[1]]
		node.Prices = append(node.Prices, *price)
	}
	if err = priceRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating prices: %w", err)
	}

	return tree, nil
}
