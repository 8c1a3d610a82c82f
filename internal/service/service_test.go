package service

import (
	"context"
	"errors"
	"testing"

	"newsroom/internal/models"
	"newsroom/internal/store/memstore"
)

// testEnv bundles services over fresh in-memory repositories.
type testEnv struct {
	posts       *memstore.PostStore
	categories  *memstore.CategoryStore
	categorySvc *CategoryService
	postSvc     *PostService
	statsSvc    *StatsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	posts := memstore.NewPostStore()
	categories := memstore.NewCategoryStore()
	return &testEnv{
		posts:       posts,
		categories:  categories,
		categorySvc: NewCategoryService(categories),
		postSvc:     NewPostService(posts, categories),
		statsSvc:    NewStatsService(posts, categories),
	}
}

// mustCategory creates a category or fails the test.
func (e *testEnv) mustCategory(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	c, err := e.categorySvc.Create(context.Background(), CategoryInput{Name: name, Slug: slug})
	if err != nil {
		t.Fatalf("create category %q: %v", slug, err)
	}
	return c
}

// mustPost creates a post or fails the test.
func (e *testEnv) mustPost(t *testing.T, in PostInput) *models.Post {
	t.Helper()
	p, err := e.postSvc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create post %q: %v", in.Slug, err)
	}
	return p
}

// postInput returns a valid create input in the given category.
func postInput(category *models.Category, title, slug string, status models.PostStatus) PostInput {
	return PostInput{
		Title:    title,
		Slug:     slug,
		Content:  "<p>body</p>",
		Summary:  "summary of " + title,
		Category: category.ID.String(),
		Status:   status,
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

// asErr is errors.As with a test-friendly name.
func asErr(err error, target any) bool {
	return errors.As(err, target)
}
