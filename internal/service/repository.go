// Package service implements the content workflows for categories, posts
// and dashboard statistics. Services validate input, apply defaults and
// delegate persistence to the repository interfaces declared here.
package service

import (
	"context"

	"github.com/google/uuid"

	"newsroom/internal/models"
)

// CategoryRepository persists categories. Lookups return (nil, nil) when
// nothing matches.
type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// PostRepository persists posts. Lookups return (nil, nil) when nothing
// matches. IncrementViews must be a single atomic operation in the
// backing store.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	Update(ctx context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementViews(ctx context.Context, slug string) (int64, bool, error)
	Count(ctx context.Context, status models.PostStatus) (int64, error)
	SumViews(ctx context.Context) (int64, error)
}
