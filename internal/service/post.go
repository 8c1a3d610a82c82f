package service

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"newsroom/internal/models"
)

// PostInput is the request body for creating a post. Category holds the
// ID of the category the post belongs to.
type PostInput struct {
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Content       string            `json:"content"`
	Summary       string            `json:"summary"`
	Category      string            `json:"category"`
	Author        string            `json:"author"`
	FeaturedImage string            `json:"featuredImage"`
	Tags          []string          `json:"tags"`
	SEO           models.SEO        `json:"seo"`
	Status        models.PostStatus `json:"status"`
	IsTrending    bool              `json:"isTrending"`
	Views         int64             `json:"views"`
}

func (in *PostInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Summary = strings.TrimSpace(in.Summary)
	in.Category = strings.TrimSpace(in.Category)
	in.Author = strings.TrimSpace(in.Author)
	in.FeaturedImage = strings.TrimSpace(in.FeaturedImage)
	in.Tags = normalizeTags(in.Tags)
	if in.Author == "" {
		in.Author = models.DefaultAuthor
	}
	if in.Status == "" {
		in.Status = models.PostStatusDraft
	}
}

// Validate checks the create input. Content must carry visible text once
// markup is stripped, so "<p></p>" counts as blank.
func (in PostInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&in.Slug, validation.Required, validation.RuneLength(1, maxSlugLen), slugRule),
		validation.Field(&in.Content, validation.Required, validation.RuneLength(1, maxContentLen), visibleTextRule),
		validation.Field(&in.Summary, validation.Required, validation.RuneLength(1, maxSummaryLen)),
		validation.Field(&in.Category, validation.Required, is.UUID),
		validation.Field(&in.Author, validation.RuneLength(0, maxAuthorLen)),
		validation.Field(&in.FeaturedImage, validation.RuneLength(0, maxURLLen), is.URL),
		validation.Field(&in.Tags, tagRules...),
		validation.Field(&in.SEO, validation.By(validateSEO)),
		validation.Field(&in.Status, validation.In(models.PostStatusDraft, models.PostStatusPublished)),
		validation.Field(&in.Views, validation.Min(int64(0))),
	)
}

// PostPatch is the request body for updating a post. Omitted fields keep
// their stored value; present fields overwrite it.
type PostPatch struct {
	Title         *string            `json:"title"`
	Slug          *string            `json:"slug"`
	Content       *string            `json:"content"`
	Summary       *string            `json:"summary"`
	Category      *string            `json:"category"`
	Author        *string            `json:"author"`
	FeaturedImage *string            `json:"featuredImage"`
	Tags          *[]string          `json:"tags"`
	SEO           *models.SEO        `json:"seo"`
	Status        *models.PostStatus `json:"status"`
	IsTrending    *bool              `json:"isTrending"`
}

func (p *PostPatch) normalize() {
	trimPtr(p.Title)
	trimPtr(p.Slug)
	trimPtr(p.Summary)
	trimPtr(p.Category)
	trimPtr(p.Author)
	trimPtr(p.FeaturedImage)
	if p.Tags != nil {
		tags := normalizeTags(*p.Tags)
		p.Tags = &tags
	}
}

// Validate checks the fields present in the patch.
func (p PostPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.RuneLength(1, maxTitleLen)),
		validation.Field(&p.Slug, validation.NilOrNotEmpty, validation.RuneLength(1, maxSlugLen), slugRule),
		validation.Field(&p.Content, validation.NilOrNotEmpty, validation.RuneLength(1, maxContentLen), visibleTextRule),
		validation.Field(&p.Summary, validation.NilOrNotEmpty, validation.RuneLength(1, maxSummaryLen)),
		validation.Field(&p.Category, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&p.Author, validation.NilOrNotEmpty, validation.RuneLength(1, maxAuthorLen)),
		validation.Field(&p.FeaturedImage, validation.RuneLength(0, maxURLLen), is.URL),
		validation.Field(&p.Tags, validation.By(func(v any) error {
			tags, _ := v.(*[]string)
			if tags == nil {
				return nil
			}
			return validation.Validate(*tags, tagRules...)
		})),
		validation.Field(&p.SEO, validation.By(validateSEO)),
		validation.Field(&p.Status, validation.NilOrNotEmpty, validation.In(models.PostStatusDraft, models.PostStatusPublished)),
	)
}

// validateSEO checks the optional SEO overrides, given as a value or pointer.
func validateSEO(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	seo, ok := v.(models.SEO)
	if !ok {
		return nil
	}
	return validation.ValidateStruct(&seo,
		validation.Field(&seo.MetaTitle, validation.RuneLength(0, maxMetaTitleLen)),
		validation.Field(&seo.MetaDescription, validation.RuneLength(0, maxMetaDescLen)),
		validation.Field(&seo.FocusKeyword, validation.RuneLength(0, maxKeywordLen)),
	)
}

// ListParams is the caller-facing form of models.PostFilter. Category is
// an unparsed ID; an invalid one matches nothing.
type ListParams struct {
	Status     models.PostStatus
	Category   string
	Trending   bool
	Query      string
	Limit      int
	IncludeAll bool
}

// PostService manages posts and resolves their categories on read.
type PostService struct {
	posts      PostRepository
	categories CategoryRepository
	policy     *bluemonday.Policy
}

// NewPostService returns a PostService backed by the given repositories.
func NewPostService(posts PostRepository, categories CategoryRepository) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		policy:     bluemonday.UGCPolicy(),
	}
}

// sanitize strips scripts, event handlers and other unsafe markup from
// post content while keeping ordinary formatting.
func (s *PostService) sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}

// requireCategory parses a category ID and checks that it exists.
func (s *PostService) requireCategory(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fieldError("category", "must be a valid UUID")
	}
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check category: %w", err)
	}
	if c == nil {
		return uuid.Nil, fieldError("category", "references an unknown category")
	}
	return id, nil
}

// resolve embeds the referenced category into p. A missing category
// leaves p.Category nil.
func (s *PostService) resolve(ctx context.Context, p *models.Post) (*models.Post, error) {
	c, err := s.categories.FindByID(ctx, p.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	p.Category = c
	return p, nil
}

// Create validates and stores a new post. Defaults: draft status, zero
// views, not trending, author "Admin".
func (s *PostService) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	in.normalize()
	in.Content = s.sanitize(in.Content)
	if err := asValidationError(in.Validate()); err != nil {
		return nil, err
	}

	categoryID, err := s.requireCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}

	created, err := s.posts.Create(ctx, &models.Post{
		Title:         in.Title,
		Slug:          in.Slug,
		Content:       in.Content,
		Summary:       in.Summary,
		CategoryID:    categoryID,
		Author:        in.Author,
		FeaturedImage: in.FeaturedImage,
		Tags:          in.Tags,
		SEO:           in.SEO,
		Status:        in.Status,
		IsTrending:    in.IsTrending,
		Views:         in.Views,
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.resolve(ctx, created)
}

// GetByID returns the post with the given ID, category resolved.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return s.resolve(ctx, p)
}

// GetBySlug returns the post with the given slug, category resolved.
// Drafts are returned too; public callers check IsPublished.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	p, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %q: %w", slug, models.ErrNotFound)
	}
	return s.resolve(ctx, p)
}

// List returns posts matching the parameters, most recent first, with
// categories resolved from a single category listing.
func (s *PostService) List(ctx context.Context, params ListParams) ([]models.Post, error) {
	filter := models.PostFilter{
		Status:     params.Status,
		Trending:   params.Trending,
		Query:      params.Query,
		Limit:      params.Limit,
		IncludeAll: params.IncludeAll,
	}
	if params.Category != "" {
		id, err := uuid.Parse(params.Category)
		if err != nil {
			return []models.Post{}, nil
		}
		filter.CategoryID = &id
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if len(posts) == 0 {
		return posts, nil
	}

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}
	for i := range posts {
		posts[i].Category = byID[posts[i].CategoryID]
	}
	return posts, nil
}

// Update overwrites the fields present in the patch and refreshes the
// post's updatedAt timestamp.
func (s *PostService) Update(ctx context.Context, id uuid.UUID, patch PostPatch) (*models.Post, error) {
	patch.normalize()
	if patch.Content != nil {
		clean := s.sanitize(*patch.Content)
		patch.Content = &clean
	}
	if err := asValidationError(patch.Validate()); err != nil {
		return nil, err
	}

	changes := models.PostChanges{
		Title:         patch.Title,
		Slug:          patch.Slug,
		Content:       patch.Content,
		Summary:       patch.Summary,
		Author:        patch.Author,
		FeaturedImage: patch.FeaturedImage,
		Tags:          patch.Tags,
		SEO:           patch.SEO,
		Status:        patch.Status,
		IsTrending:    patch.IsTrending,
	}
	if patch.Category != nil {
		categoryID, err := s.requireCategory(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		changes.CategoryID = &categoryID
	}

	p, err := s.posts.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return s.resolve(ctx, p)
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.posts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if !ok {
		return fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// IncrementView records one view of the published post with the given
// slug and returns the new count. Drafts cannot be viewed this way.
func (s *PostService) IncrementView(ctx context.Context, slug string) (int64, error) {
	views, ok, err := s.posts.IncrementViews(ctx, slug)
	if err != nil {
		return 0, fmt.Errorf("increment view: %w", err)
	}
	if !ok {
		return 0, fmt.Errorf("published post %q: %w", slug, models.ErrNotFound)
	}
	return views, nil
}
