package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"newsroom/internal/models"
)

// StatsService computes the admin dashboard summary.
type StatsService struct {
	posts      PostRepository
	categories CategoryRepository
}

// NewStatsService returns a StatsService over both repositories.
func NewStatsService(posts PostRepository, categories CategoryRepository) *StatsService {
	return &StatsService{posts: posts, categories: categories}
}

// Compute runs the five summary queries concurrently. The result is only
// returned when every query succeeds; otherwise the first failure is
// reported wrapped in models.ErrAggregation.
func (s *StatsService) Compute(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.TotalPosts, err = s.posts.Count(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.PublishedPosts, err = s.posts.Count(ctx, models.PostStatusPublished)
		return err
	})
	g.Go(func() (err error) {
		stats.DraftPosts, err = s.posts.Count(ctx, models.PostStatusDraft)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCategories, err = s.categories.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalViews, err = s.posts.SumViews(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compute stats: %w: %w", models.ErrAggregation, err)
	}
	return &stats, nil
}
