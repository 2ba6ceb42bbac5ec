package db

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"ledgerly-server/src/db"
	"ledgerly-server/src/models"
	"ledgerly-server/src/slug"

	"github.com/jackc/pgx/v5"
)

// ErrEmptySlug is returned when a name or slug has no slug-able characters.
var ErrEmptySlug = errors.New("slug is empty")

const (
	categoryColumns      = `id, name, slug, created_at, updated_at`
	categoryListCacheKey = "categories:all"
)

func categoryCacheKey(id int64) string {
	return "categories:" + strconv.FormatInt(id, 10)
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, db.MapError(err)
	}
	return &c, nil
}

func GetAllCategories(ctx context.Context, q db.Querier) ([]models.Category, error) {
	if cached, ok := db.GetCategoryCache(categoryListCacheKey); ok {
		if categories, ok := cached.([]models.Category); ok {
			return slices.Clone(categories), nil
		}
	}

	rows, err := q.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	db.SetCategoryCache(categoryListCacheKey, slices.Clone(categories))
	return categories, nil
}

func GetCategoryByID(ctx context.Context, q db.Querier, id int64) (*models.Category, error) {
	key := categoryCacheKey(id)
	if cached, ok := db.GetCategoryCache(key); ok {
		if c, ok := cached.(models.Category); ok {
			return &c, nil
		}
	}

	c, err := scanCategory(q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	db.SetCategoryCache(key, *c)
	return c, nil
}

func CategoryExists(ctx context.Context, q db.Querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check category %d: %w", id, err)
	}
	return exists, nil
}

// UniqueSlug returns base if no other category uses it, otherwise the first
// free base-1, base-2, ... Pass excludeID 0 when creating.
func UniqueSlug(ctx context.Context, q db.Querier, base string, excludeID int64) (string, error) {
	if base == "" {
		return "", ErrEmptySlug
	}
	for n := 0; ; n++ {
		candidate := slug.Candidate(base, n)
		var taken bool
		err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`,
			candidate, excludeID,
		).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

func CreateCategory(ctx context.Context, q db.Querier, name string) (*models.Category, error) {
	s, err := UniqueSlug(ctx, q, slug.Make(name), 0)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING ` + categoryColumns

	c, err := scanCategory(q.QueryRow(ctx, query, name, s))
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	db.ClearAllCategoryCaches()
	return c, nil
}

// UpdateCategory renames the category. A nil newSlug keeps the stored slug;
// otherwise it is normalized and de-duplicated like a fresh one.
func UpdateCategory(ctx context.Context, q db.Querier, id int64, name string, newSlug *string) (*models.Category, error) {
	var query string
	args := []any{name, id}
	if newSlug == nil {
		query = `
			UPDATE categories
			SET name = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING ` + categoryColumns
	} else {
		s, err := UniqueSlug(ctx, q, slug.Make(*newSlug), id)
		if err != nil {
			return nil, err
		}
		query = `
			UPDATE categories
			SET name = $1, slug = $3, updated_at = NOW()
			WHERE id = $2
			RETURNING ` + categoryColumns
		args = append(args, s)
	}

	c, err := scanCategory(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	db.ClearAllCategoryCaches()
	return c, nil
}

func DeleteCategory(ctx context.Context, q db.Querier, id int64) error {
	cmd, err := q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	db.ClearAllCategoryCaches()
	return mustAffect(cmd.RowsAffected())
}
