// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"newsroom/internal/models"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// queryOne runs a single-row category query. Returns nil if no row matched.
func (s *CategoryStore) queryOne(ctx context.Context, op, query string, args ...any) (*models.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return c, nil
}

// List returns all categories in insertion order.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapErr("list categories", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrapErr("scan category", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list categories", err)
	}
	return items, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.queryOne(ctx, "find category by id",
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.queryOne(ctx, "find category by slug",
		`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
}

// Create inserts a new category and returns it.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, wrapErr("create category", err)
	}
	return result, nil
}

// Update overwrites the non-nil fields of ch and returns the stored
// category. Returns nil if no category has the given ID.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error) {
	return s.queryOne(ctx, "update category", `
		UPDATE categories SET
			name = COALESCE($1, name),
			slug = COALESCE($2, slug),
			description = COALESCE($3, description),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+categoryColumns,
		nullable(ch.Name), nullable(ch.Slug), nullable(ch.Description), id,
	)
}

// Delete removes a category by ID and reports whether a row existed.
// Posts referencing the category are left untouched.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete category", err)
	}
	return n > 0, nil
}

// Count returns the number of categories.
func (s *CategoryStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, wrapErr("count categories", err)
	}
	return count, nil
}
