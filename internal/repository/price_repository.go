package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"priceboard/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPriceNotFound = errors.New("price not found")
)

// PriceRepository defines the interface for price data access. Every write
// here pairs the price change with an updated_at stamp on the owning
// category, inside the same transaction.
type PriceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Price, error)
	AddToProduct(ctx context.Context, price *domain.Price, productName, productDescription string) error
	UpdateFull(ctx context.Context, price *domain.Price, productName, productDescription string) error
	UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	UpdateDiscount(ctx context.Context, id uuid.UUID, discount *int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type priceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new instance of PriceRepository
func NewPriceRepository(db *sql.DB) PriceRepository {
	return &priceRepository{db: db}
}

const priceColumns = "id, product_id, amount, discount, color, storage, warranty, label, dimensions, created_at"

func scanPrice(row interface{ Scan(...any) error }) (*domain.Price, error) {
	price := &domain.Price{}
	err := row.Scan(
		&price.ID,
		&price.ProductID,
		&price.Amount,
		&price.Discount,
		&price.Color,
		&price.Storage,
		&price.Warranty,
		&price.Label,
		&price.Dimensions,
		&price.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return price, nil
}

// FindByID retrieves a price by ID using parameterized queries
func (r *priceRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Price, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM prices
		WHERE id = $1
	`, priceColumns)

	price, err := scanPrice(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPriceNotFound
		}
		return nil, fmt.Errorf("failed to find price by ID: %w", err)
	}

	return price, nil
}

// AddToProduct appends a new labeled price variant to an existing product.
// The product's name and description are refreshed from the edit form and
// the owning category's updated_at moves, all in one transaction.
func (r *priceRepository) AddToProduct(ctx context.Context, price *domain.Price, productName, productDescription string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE products
		SET name = $2, description = $3
		WHERE id = $1
		RETURNING category_id
	`, price.ProductID, productName, productDescription).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	if err := insertPriceTx(ctx, tx, price); err != nil {
		return err
	}

	if err := touchCategoryTx(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateFull applies a full edit: product name/description plus every price
// variant field, plus the category stamp, atomically.
func (r *priceRepository) UpdateFull(ctx context.Context, price *domain.Price, productName, productDescription string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	productID, categoryID, err := ownersOfPriceTx(ctx, tx, price.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3
		WHERE id = $1
	`, productID, productName, productDescription)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE prices
		SET amount = $2, discount = $3, color = $4, storage = $5, warranty = $6, label = $7, dimensions = $8
		WHERE id = $1
	`,
		price.ID,
		price.Amount,
		price.Discount,
		price.Color,
		price.Storage,
		price.Warranty,
		price.Label,
		price.Dimensions,
	)
	if err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}

	if err := touchCategoryTx(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateAmount changes only the amount column, the lightweight path behind
// the inline-edit grid. The category stamp still moves with it.
func (r *priceRepository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	return r.updateColumn(ctx, id, `UPDATE prices SET amount = $2 WHERE id = $1`, amount)
}

// UpdateDiscount changes only the discount column. A nil discount clears it.
func (r *priceRepository) UpdateDiscount(ctx context.Context, id uuid.UUID, discount *int) error {
	return r.updateColumn(ctx, id, `UPDATE prices SET discount = $2 WHERE id = $1`, discount)
}

func (r *priceRepository) updateColumn(ctx context.Context, id uuid.UUID, query string, value interface{}) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, categoryID, err := ownersOfPriceTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, query, id, value); err != nil {
		return fmt.Errorf("failed to update price: %w", err)
	}

	if err := touchCategoryTx(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a price row and stamps the owning category, atomically.
// The product stays; a product may end up with zero prices.
func (r *priceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, categoryID, err := ownersOfPriceTx(ctx, tx, id)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM prices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete price: %w", err)
	}

	if err := touchCategoryTx(ctx, tx, categoryID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ownersOfPriceTx resolves a price's owning product and category inside an
// open transaction.
func ownersOfPriceTx(ctx context.Context, tx *sql.Tx, priceID uuid.UUID) (productID, categoryID uuid.UUID, err error) {
	err = tx.QueryRowContext(ctx, `
		SELECT pr.product_id, p.category_id
		FROM prices pr
		JOIN products p ON p.id = pr.product_id
		WHERE pr.id = $1
	`, priceID).Scan(&productID, &categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, uuid.Nil, ErrPriceNotFound
		}
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to find price owners: %w", err)
	}
	return productID, categoryID, nil
}
