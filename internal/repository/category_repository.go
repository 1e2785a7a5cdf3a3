package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"priceboard/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")

	// ErrReorderConflict signals that a row referenced by a reorder vanished
	// mid-transaction (concurrent delete). No positions are changed.
	ErrReorderConflict = errors.New("reorder conflicts with a concurrent change")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context, includeInactive bool) ([]*domain.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IDs(ctx context.Context) ([]uuid.UUID, error)
	NextPosition(ctx context.Context) (int, error)
	Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categoryColumns = "id, name, brand_color, position, is_active, updated_at"

func scanCategory(row interface{ Scan(...any) error }) (*domain.Category, error) {
	category := &domain.Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.BrandColor,
		&category.Position,
		&category.IsActive,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Create inserts a new category into the database using parameterized queries
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, brand_color, position, is_active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID,
		category.Name,
		category.BrandColor,
		category.Position,
		category.IsActive,
		category.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "categories_name_key") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves categories in display order. Inactive categories are only
// included for the admin view.
func (r *categoryRepository) List(ctx context.Context, includeInactive bool) ([]*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		ORDER BY position ASC
	`, categoryColumns)
	if !includeInactive {
		query = fmt.Sprintf(`
			SELECT %s
			FROM categories
			WHERE is_active = TRUE
			ORDER BY position ASC
		`, categoryColumns)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE id = $1
	`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// Update changes a category's name and brand color and refreshes updated_at
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	query := `
		UPDATE categories
		SET name = $2, brand_color = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.BrandColor)
	if err != nil {
		if isUniqueViolation(err, "categories_name_key") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
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

// ToggleActive flips the is_active flag and refreshes updated_at in a
// single statement so the flip is atomic.
func (r *categoryRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	query := fmt.Sprintf(`
		UPDATE categories
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, categoryColumns)

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to toggle category: %w", err)
	}

	return category, nil
}

// Delete removes a category. Products and prices underneath go with it via
// ON DELETE CASCADE.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
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

// IDs returns the IDs of all categories, used to validate that a reorder
// request is a full permutation of the current membership.
func (r *categoryRepository) IDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to list category ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category ids: %w", err)
	}

	return ids, nil
}

// NextPosition returns max(position)+1, so new categories append at the end.
func (r *categoryRepository) NextPosition(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM categories`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next category position: %w", err)
	}
	return next, nil
}

// Reorder assigns position = index for each category in the given order,
// inside one transaction. A pure reorder never touches updated_at; ordering
// is a presentational concern, not a freshness signal.
func (r *categoryRepository) Reorder(ctx context.Context, orderedIDs []uuid.UUID) (int, error) {
	return reorderRows(ctx, r.db, "categories", orderedIDs)
}

// reorderRows performs the index-based position reassignment shared by
// category and product reorders. If any referenced row no longer exists the
// whole transaction rolls back with ErrReorderConflict.
func reorderRows(ctx context.Context, db *sql.DB, table string, orderedIDs []uuid.UUID) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`UPDATE %s SET position = $1 WHERE id = $2`, table)

	updated := 0
	for index, id := range orderedIDs {
		result, err := tx.ExecContext(ctx, query, index, id)
		if err != nil {
			return 0, fmt.Errorf("failed to update position: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return 0, ErrReorderConflict
		}
		updated++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit reorder transaction: %w", err)
	}

	return updated, nil
}

// isUniqueViolation detects a unique constraint error for a named
// constraint (SQLSTATE 23505)
func isUniqueViolation(err error, constraint string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "SQLSTATE 23505") &&
		strings.Contains(err.Error(), constraint)
}
