package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spent/internal/model"
)

const categoryColumns = `id, name, color, icon, user_id, created_at`

// CreateCategory inserts a category and sets its ID. The owner is written
// once here and no statement in this package ever updates it.
func (s queries) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	var owner any
	if userID, owned := category.Owner.UserID(); owned {
		owner = userID
	}

	result, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (name, color, icon, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		category.Name, category.Color, category.Icon, owner, category.CreatedAt)
	if err != nil {
		return translateError(err, fmt.Sprintf("create category %q", category.Name))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category ID: %w", err)
	}
	category.ID = id

	slog.Info("created new category", "name", category.Name, "id", id, "owner", category.Owner)
	return nil
}

// GetCategoryByID returns the category with the given id.
func (s queries) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "categoryID"); err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("get category %d", id))
	}
	return category, nil
}

// GetVisibleCategories returns shared categories followed by those owned by userID.
func (s queries) GetVisibleCategories(ctx context.Context, userID uuid.UUID) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	return s.listCategories(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id IS NULL OR user_id = ?
		ORDER BY user_id IS NOT NULL, name, id`, userID)
}

// GetSharedCategories returns only the shared default categories.
func (s queries) GetSharedCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	return s.listCategories(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE user_id IS NULL
		ORDER BY name, id`)
}

// CountSharedCategories returns the number of shared categories.
func (s queries) CountSharedCategories(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE user_id IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shared categories: %w", err)
	}
	return count, nil
}

func (s queries) listCategories(ctx context.Context, query string, args ...any) ([]model.Category, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func scanCategory(row scanner) (*model.Category, error) {
	var (
		category model.Category
		owner    uuid.NullUUID
	)
	if err := row.Scan(&category.ID, &category.Name, &category.Color, &category.Icon, &owner, &category.CreatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		category.Owner = model.OwnedBy(owner.UUID)
	}
	return &category, nil
}
