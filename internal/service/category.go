package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"newsroom/internal/models"
	"newsroom/internal/slug"
)

// CategoryInput is the request body for creating a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
}

// Validate checks the create input.
func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&in.Slug, validation.Required, validation.RuneLength(1, maxSlugLen), slugRule),
		validation.Field(&in.Description, validation.RuneLength(0, maxDescriptionLen)),
	)
}

// CategoryPatch is the request body for updating a category. Omitted
// fields keep their stored value.
type CategoryPatch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

func (p *CategoryPatch) normalize() {
	trimPtr(p.Name)
	trimPtr(p.Slug)
	trimPtr(p.Description)
}

// Validate checks the fields present in the patch.
func (p CategoryPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.RuneLength(1, maxNameLen)),
		validation.Field(&p.Slug, validation.NilOrNotEmpty, validation.RuneLength(1, maxSlugLen), slugRule),
		validation.Field(&p.Description, validation.RuneLength(0, maxDescriptionLen)),
	)
}

// CategoryService manages categories.
type CategoryService struct {
	categories CategoryRepository
}

// NewCategoryService returns a CategoryService backed by the given repository.
func NewCategoryService(categories CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// SuggestSlug derives a slug from a category name.
func (s *CategoryService) SuggestSlug(name string) string {
	return slug.Generate(name)
}

// Create validates and stores a new category. A slug already used by
// another category yields models.ErrConflict.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := asValidationError(in.Validate()); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// GetByID returns the category with the given ID.
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

// GetBySlug returns the category with the given slug.
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", slug, models.ErrNotFound)
	}
	return c, nil
}

// List returns all categories in insertion order.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// Update overwrites the fields present in the patch.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	patch.normalize()
	if err := asValidationError(patch.Validate()); err != nil {
		return nil, err
	}

	c, err := s.categories.Update(ctx, id, models.CategoryChanges{
		Name:        patch.Name,
		Slug:        patch.Slug,
		Description: patch.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

// Delete removes a category. Posts that reference it are left in place.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.categories.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if !ok {
		return fmt.Errorf("category %s: %w", id, models.ErrNotFound)
	}
	return nil
}
