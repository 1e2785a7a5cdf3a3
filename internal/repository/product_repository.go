package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"priceboard/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access. Writes
// that span multiple rows run inside a single transaction; the owning
// category's updated_at moves together with every price-bearing change.
type ProductRepository interface {
	CreateWithPrice(ctx context.Context, product *domain.Product, price *domain.Price) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error)
	IDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, category_id, position"

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.CategoryID,
		&product.Position,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// CreateWithPrice inserts a product and its first price as one transaction
// and stamps the owning category's updated_at. Either all three writes
// apply or none do.
func (r *productRepository) CreateWithPrice(ctx context.Context, product *domain.Product, price *domain.Price) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// New products append at the end of their category.
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM products WHERE category_id = $1`,
		product.CategoryID,
	).Scan(&product.Position)
	if err != nil {
		return fmt.Errorf("failed to compute next product position: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, description, category_id, position)
		VALUES ($1, $2, $3, $4, $5)
	`, product.ID, product.Name, product.Description, product.CategoryID, product.Position)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertPriceTx(ctx, tx, price); err != nil {
		return err
	}

	if err := touchCategoryTx(ctx, tx, product.CategoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE id = $1
	`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// ListByCategory retrieves a category's products in display order
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE category_id = $1
		ORDER BY position ASC
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// IDs returns product IDs, optionally limited to one category. Used to
// validate reorder membership against the scope's current contents.
func (r *productRepository) IDs(ctx context.Context, categoryID *uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM products`
	args := []interface{}{}
	if categoryID != nil {
		query += ` WHERE category_id = $1`
		args = append(args, *categoryID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list product ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product ids: %w", err)
	}

	return ids, nil
}

// Delete removes a product and all its prices, then stamps the owning
// category's updated_at, as one transaction.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID uuid.UUID
	err = tx.QueryRowContext(ctx, `SELECT category_id FROM products WHERE id = $1`, id).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product prices: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err := touchCategoryTx(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Reorder assigns position = index for each product in the given order,
// inside one transaction. updated_at is deliberately left alone.
func (r *productRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	return reorderRows(ctx, r.db, "products", orderedIDs)
}

// touchCategoryTx stamps a category's updated_at inside an open
// transaction. Every price-bearing mutation routes through this so the
// freshness signal never goes stale.
func touchCategoryTx(ctx context.Context, tx *sql.Tx, categoryID uuid.UUID) error {
	result, err := tx.ExecContext(ctx, `UPDATE categories SET updated_at = NOW() WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to touch category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// insertPriceTx inserts a price row inside an open transaction.
func insertPriceTx(ctx context.Context, tx *sql.Tx, price *domain.Price) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO prices (id, product_id, amount, discount, color, storage, warranty, label, dimensions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		price.ID,
		price.ProductID,
		price.Amount,
		price.Discount,
		price.Color,
		price.Storage,
		price.Warranty,
		price.Label,
		price.Dimensions,
		price.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create price: %w", err)
	}
	return nil
}
