package service

import (
	"context"
	"fmt"
	"log/slog"

	"newsroom/internal/models"
	"newsroom/internal/slug"
)

// demoCategory describes one seeded category.
type demoCategory struct {
	name        string
	description string
}

var demoCategories = []demoCategory{
	{name: "Technology", description: "Latest in tech and gadgets"},
	{name: "Business", description: "Economy and enterprise news"},
	{name: "Lifestyle", description: "Travel, food, and culture"},
	{name: "Politics", description: "Global and domestic affairs"},
}

// demoPost describes one seeded post; category indexes demoCategories.
type demoPost struct {
	input    PostInput
	category int
}

var demoPosts = []demoPost{
	{
		category: 0,
		input: PostInput{
			Title:         "The Future of AI: How Generative Models are Changing the Creative Landscape",
			Slug:          "future-of-ai-generative-models",
			Summary:       "Artificial Intelligence is no longer just a buzzword. From coding to digital art, generative models are reshaping how we create and consume content.",
			Content:       "<p>Deep dive content about AI...</p>",
			Author:        "Alex Rivera",
			FeaturedImage: "https://images.unsplash.com/photo-1677442136019-21780ecad995",
			Status:        models.PostStatusPublished,
			IsTrending:    true,
			Tags:          []string{"AI", "Tech"},
		},
	},
	{
		category: 1,
		input: PostInput{
			Title:         "Global Markets Brace for Economic Shift as Interest Rates Stabilize",
			Slug:          "global-markets-economic-shift",
			Summary:       "Investors are keeping a close eye on central bank decisions as inflation numbers show signs of cooling down across major economies.",
			Content:       "<p>Economy details...</p>",
			Author:        "Sarah Chen",
			FeaturedImage: "https://images.unsplash.com/photo-1611974717482-aa4e3ff708a3",
			Status:        models.PostStatusPublished,
			IsTrending:    true,
			Tags:          []string{"Finance", "Economy"},
		},
	},
	{
		category: 2,
		input: PostInput{
			Title:         "10 Essential Travel Destinations for 2026: Beyond the Tourist Traps",
			Slug:          "travel-destinations-2026",
			Summary:       "Discover the hidden gems of the world that offer breathtaking views and authentic cultural experiences without the crowds.",
			Content:       "<p>Travel guide content...</p>",
			Author:        "James Wilson",
			FeaturedImage: "https://images.unsplash.com/photo-1476514525535-07fb3b4ae5f1",
			Status:        models.PostStatusPublished,
			Tags:          []string{"Travel", "Global"},
		},
	},
}

// Seed populates an empty store with demo categories and posts through
// the category and post services. It is a no-op, returning false, when
// either collection already holds data. A failed insert removes whatever
// this call created so the seed can be retried.
func Seed(ctx context.Context, categories CategoryRepository, posts PostRepository) (bool, error) {
	nCategories, err := categories.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed check categories: %w", err)
	}
	nPosts, err := posts.Count(ctx, "")
	if err != nil {
		return false, fmt.Errorf("seed check posts: %w", err)
	}
	if nCategories > 0 || nPosts > 0 {
		slog.Info("database already seeded, skipping",
			"categories", nCategories,
			"posts", nPosts,
		)
		return false, nil
	}

	categorySvc := NewCategoryService(categories)
	postSvc := NewPostService(posts, categories)

	var (
		savedCategories = make([]*models.Category, 0, len(demoCategories))
		savedPosts      = make([]*models.Post, 0, len(demoPosts))
	)
	rollback := func(cause error) error {
		// Cleanup runs even when ctx is already cancelled.
		cleanupCtx := context.WithoutCancel(ctx)
		for _, p := range savedPosts {
			if err := postSvc.Delete(cleanupCtx, p.ID); err != nil {
				slog.Error("seed rollback: delete post", "slug", p.Slug, "error", err)
			}
		}
		for _, c := range savedCategories {
			if err := categorySvc.Delete(cleanupCtx, c.ID); err != nil {
				slog.Error("seed rollback: delete category", "slug", c.Slug, "error", err)
			}
		}
		return cause
	}

	for _, dc := range demoCategories {
		c, err := categorySvc.Create(ctx, CategoryInput{
			Name:        dc.name,
			Slug:        slug.Generate(dc.name),
			Description: dc.description,
		})
		if err != nil {
			return false, rollback(fmt.Errorf("seed category %q: %w", dc.name, err))
		}
		savedCategories = append(savedCategories, c)
	}

	for _, dp := range demoPosts {
		in := dp.input
		in.Category = savedCategories[dp.category].ID.String()
		p, err := postSvc.Create(ctx, in)
		if err != nil {
			return false, rollback(fmt.Errorf("seed post %q: %w", in.Slug, err))
		}
		savedPosts = append(savedPosts, p)
	}

	slog.Info("database seeded with demo content",
		"categories", len(savedCategories),
		"posts", len(savedPosts),
	)
	return true, nil
}
