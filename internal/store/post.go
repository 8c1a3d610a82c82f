// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"newsroom/internal/models"
)

// PostStore handles all post-related database operations. Tags and SEO
// overrides are stored as JSONB documents alongside the scalar columns.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, title, slug, content, summary, category_id, author,
	featured_image, tags, seo, status, is_trending, views, created_at, updated_at`

// scanPost scans a row into a Post, decoding the JSONB columns.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var (
		p         models.Post
		tags, seo []byte
	)
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Summary, &p.CategoryID, &p.Author,
		&p.FeaturedImage, &tags, &seo, &p.Status, &p.IsTrending, &p.Views,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := json.Unmarshal(seo, &p.SEO); err != nil {
		return nil, fmt.Errorf("decode seo: %w", err)
	}
	return &p, nil
}

// queryOne runs a single-row post query. Returns nil if no row matched.
func (s *PostStore) queryOne(ctx context.Context, op, query string, args ...any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return p, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.queryOne(ctx, "find post by id", `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

// FindBySlug retrieves a post of any status by its slug. Returns nil if
// not found.
func (s *PostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.queryOne(ctx, "find post by slug", `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

// Create inserts a new post and returns it with the generated ID and
// timestamps. A duplicate slug yields models.ErrConflict.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags, err := encodeJSON(p.Tags, "[]")
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	seo, err := encodeJSON(p.SEO, "{}")
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, slug, content, summary, category_id, author,
		                   featured_image, tags, seo, status, is_trending, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11, $12)
		RETURNING `+postColumns,
		p.Title, p.Slug, p.Content, p.Summary, p.CategoryID, p.Author,
		p.FeaturedImage, tags, seo, string(p.Status), p.IsTrending, p.Views,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, wrapErr("create post", err)
	}
	return result, nil
}

// Update overwrites the non-nil fields of ch, refreshes updated_at and
// returns the stored post. Returns nil if no post has the given ID.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error) {
	var tags, seo, status any
	if ch.Tags != nil {
		v, err := encodeJSON(*ch.Tags, "[]")
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
		tags = v
	}
	if ch.SEO != nil {
		v, err := encodeJSON(*ch.SEO, "{}")
		if err != nil {
			return nil, fmt.Errorf("update post: %w", err)
		}
		seo = v
	}
	if ch.Status != nil {
		status = string(*ch.Status)
	}

	return s.queryOne(ctx, "update post", `
		UPDATE posts SET
			title = COALESCE($1, title),
			slug = COALESCE($2, slug),
			content = COALESCE($3, content),
			summary = COALESCE($4, summary),
			category_id = COALESCE($5, category_id),
			author = COALESCE($6, author),
			featured_image = COALESCE($7, featured_image),
			tags = COALESCE($8::jsonb, tags),
			seo = COALESCE($9::jsonb, seo),
			status = COALESCE($10, status),
			is_trending = COALESCE($11, is_trending),
			updated_at = NOW()
		WHERE id = $12
		RETURNING `+postColumns,
		nullable(ch.Title), nullable(ch.Slug), nullable(ch.Content), nullable(ch.Summary),
		nullable(ch.CategoryID), nullable(ch.Author), nullable(ch.FeaturedImage),
		tags, seo, status, nullable(ch.IsTrending), id,
	)
}

// Delete removes a post by ID and reports whether a row existed.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete post", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapErr("delete post", err)
	}
	return n > 0, nil
}

// List returns posts matching the filter, most recent first.
func (s *PostStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if status := f.EffectiveStatus(); status != "" {
		conds = append(conds, "status = "+arg(string(status)))
	}
	if f.CategoryID != nil {
		conds = append(conds, "category_id = "+arg(*f.CategoryID))
	}
	if f.Trending {
		conds = append(conds, "is_trending")
	}
	if f.Query != "" {
		p := arg("%" + escapeLike(f.Query) + "%")
		conds = append(conds, "(title ILIKE "+p+" OR summary ILIKE "+p+")")
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(f.EffectiveLimit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list posts", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, wrapErr("scan post", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list posts", err)
	}
	return items, nil
}

// IncrementViews atomically adds one view to the published post with the
// given slug and returns the new count. The boolean is false when no
// published post matched.
func (s *PostStore) IncrementViews(ctx context.Context, slug string) (int64, bool, error) {
	var views int64
	err := s.db.QueryRowContext(ctx, `
		UPDATE posts SET views = views + 1, updated_at = NOW()
		WHERE slug = $1 AND status = 'published'
		RETURNING views
	`, slug).Scan(&views)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, wrapErr("increment views", err)
	}
	return views, true, nil
}

// Count returns the number of posts with the given status, or all posts
// when status is empty.
func (s *PostStore) Count(ctx context.Context, status models.PostStatus) (int64, error) {
	var (
		count int64
		err   error
	)
	if status == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE status = $1`, string(status)).Scan(&count)
	}
	if err != nil {
		return 0, wrapErr("count posts", err)
	}
	return count, nil
}

// SumViews returns the total views across all posts.
func (s *PostStore) SumViews(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(views), 0)::bigint FROM posts`).Scan(&total); err != nil {
		return 0, wrapErr("sum views", err)
	}
	return total, nil
}

// encodeJSON marshals v for a JSONB column, substituting empty for null.
func encodeJSON(v any, empty string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return empty, nil
	}
	return string(b), nil
}

// likeEscaper escapes the ILIKE wildcards so queries match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
