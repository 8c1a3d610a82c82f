// Package memstore provides in-memory implementations of the category and
// post repositories. They mirror the PostgreSQL stores (including unique
// slugs and the atomic view counter) and are used by tests and by the
// "memory" store driver for local development.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"newsroom/internal/models"
)

// CategoryStore keeps categories in insertion order.
type CategoryStore struct {
	mu    sync.RWMutex
	items []models.Category
}

// NewCategoryStore returns an empty CategoryStore.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{}
}

func (s *CategoryStore) indexOf(id uuid.UUID) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *CategoryStore) slugTaken(slug string, except uuid.UUID) bool {
	for _, c := range s.items {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

// List returns all categories in insertion order.
func (s *CategoryStore) List(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.items))
	copy(out, s.items)
	return out, nil
}

// FindByID returns the category with the given ID, or nil.
func (s *CategoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		c := s.items[i]
		return &c, nil
	}
	return nil, nil
}

// FindBySlug returns the category with the given slug, or nil.
func (s *CategoryStore) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.items {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, nil
}

// Create stores a copy of c with a fresh ID and timestamps.
func (s *CategoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slugTaken(c.Slug, uuid.Nil) {
		return nil, fmt.Errorf("create category: %w: slug %q", models.ErrConflict, c.Slug)
	}
	now := time.Now().UTC()
	stored := models.Category{
		ID:          uuid.New(),
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.items = append(s.items, stored)
	return &stored, nil
}

// Update overwrites the non-nil fields of ch. Returns nil if id is unknown.
func (s *CategoryStore) Update(_ context.Context, id uuid.UUID, ch models.CategoryChanges) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	if ch.Slug != nil && s.slugTaken(*ch.Slug, id) {
		return nil, fmt.Errorf("update category: %w: slug %q", models.ErrConflict, *ch.Slug)
	}
	c := &s.items[i]
	if ch.Name != nil {
		c.Name = *ch.Name
	}
	if ch.Slug != nil {
		c.Slug = *ch.Slug
	}
	if ch.Description != nil {
		c.Description = *ch.Description
	}
	c.UpdatedAt = time.Now().UTC()
	out := *c
	return &out, nil
}

// Delete removes the category and reports whether it existed.
func (s *CategoryStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, nil
}

// Count returns the number of categories.
func (s *CategoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.items)), nil
}

// postEntry pairs a post with its insertion sequence, which breaks ties
// between posts created within the same clock tick.
type postEntry struct {
	seq  uint64
	post models.Post
}

// PostStore keeps posts keyed by ID.
type PostStore struct {
	mu    sync.RWMutex
	seq   uint64
	posts map[uuid.UUID]*postEntry
}

// NewPostStore returns an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[uuid.UUID]*postEntry)}
}

// clonePost copies p so callers never alias the stored tag slice.
func clonePost(p models.Post) *models.Post {
	p.Tags = append([]string{}, p.Tags...)
	p.Category = nil
	return &p
}

func (s *PostStore) bySlug(slug string) *postEntry {
	for _, e := range s.posts {
		if e.post.Slug == slug {
			return e
		}
	}
	return nil
}

// FindByID returns the post with the given ID, or nil.
func (s *PostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.posts[id]; ok {
		return clonePost(e.post), nil
	}
	return nil, nil
}

// FindBySlug returns the post with the given slug, or nil.
func (s *PostStore) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.bySlug(slug); e != nil {
		return clonePost(e.post), nil
	}
	return nil, nil
}

// Create stores a copy of p with a fresh ID and timestamps.
func (s *PostStore) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bySlug(p.Slug) != nil {
		return nil, fmt.Errorf("create post: %w: slug %q", models.ErrConflict, p.Slug)
	}
	stored := clonePost(*p)
	now := time.Now().UTC()
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.seq++
	s.posts[stored.ID] = &postEntry{seq: s.seq, post: *stored}
	return clonePost(*stored), nil
}

// Update overwrites the non-nil fields of ch. Returns nil if id is unknown.
func (s *PostStore) Update(_ context.Context, id uuid.UUID, ch models.PostChanges) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	if ch.Slug != nil {
		if other := s.bySlug(*ch.Slug); other != nil && other.post.ID != id {
			return nil, fmt.Errorf("update post: %w: slug %q", models.ErrConflict, *ch.Slug)
		}
	}

	p := &e.post
	assign(&p.Title, ch.Title)
	assign(&p.Slug, ch.Slug)
	assign(&p.Content, ch.Content)
	assign(&p.Summary, ch.Summary)
	assign(&p.CategoryID, ch.CategoryID)
	assign(&p.Author, ch.Author)
	assign(&p.FeaturedImage, ch.FeaturedImage)
	assign(&p.SEO, ch.SEO)
	assign(&p.Status, ch.Status)
	assign(&p.IsTrending, ch.IsTrending)
	if ch.Tags != nil {
		p.Tags = append([]string{}, (*ch.Tags)...)
	}
	p.UpdatedAt = time.Now().UTC()
	return clonePost(*p), nil
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Delete removes the post and reports whether it existed.
func (s *PostStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return false, nil
	}
	delete(s.posts, id)
	return true, nil
}

// List returns posts matching f, most recent first.
func (s *PostStore) List(_ context.Context, f models.PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := f.EffectiveStatus()
	query := strings.ToLower(f.Query)

	var matched []*postEntry
	for _, e := range s.posts {
		p := &e.post
		if status != "" && p.Status != status {
			continue
		}
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.Trending && !p.IsTrending {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Title), query) &&
			!strings.Contains(strings.ToLower(p.Summary), query) {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	if limit := f.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]models.Post, 0, len(matched))
	for _, e := range matched {
		out = append(out, *clonePost(e.post))
	}
	return out, nil
}

// IncrementViews adds one view to the published post with the given slug
// under the write lock, so concurrent calls never lose an update.
func (s *PostStore) IncrementViews(_ context.Context, slug string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.bySlug(slug)
	if e == nil || e.post.Status != models.PostStatusPublished {
		return 0, false, nil
	}
	e.post.Views++
	e.post.UpdatedAt = time.Now().UTC()
	return e.post.Views, true, nil
}

// Count returns the number of posts with the given status, or all posts
// when status is empty.
func (s *PostStore) Count(_ context.Context, status models.PostStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if status == "" {
		return int64(len(s.posts)), nil
	}
	var n int64
	for _, e := range s.posts {
		if e.post.Status == status {
			n++
		}
	}
	return n, nil
}

// SumViews returns the total views across all posts.
func (s *PostStore) SumViews(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, e := range s.posts {
		total += e.post.Views
	}
	return total, nil
}
