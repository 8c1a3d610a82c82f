package handlers

import (
	"log/slog"
	"net/http"

	"newsroom/internal/cache"
	"newsroom/internal/service"
)

// Admin groups the dashboard handlers.
type Admin struct {
	stats      *service.StatsService
	categories service.CategoryRepository
	posts      service.PostRepository
	cache      *cache.ResponseCache
}

// NewAdmin creates the admin handlers. The repositories are used by the
// seeder; rc may be nil.
func NewAdmin(stats *service.StatsService, categories service.CategoryRepository, posts service.PostRepository, rc *cache.ResponseCache) *Admin {
	return &Admin{stats: stats, categories: categories, posts: posts, cache: rc}
}

// Stats returns the dashboard summary counts.
func (h *Admin) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.stats.Compute(r.Context())
	if err != nil {
		handleError(w, r, err, "stats")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Seed loads the demo content into an empty store.
func (h *Admin) Seed(w http.ResponseWriter, r *http.Request) {
	seeded, err := service.Seed(r.Context(), h.categories, h.posts)
	if err != nil {
		handleError(w, r, err, "seed")
		return
	}
	if !seeded {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Database already seeded"})
		return
	}
	h.cache.InvalidateAll(r.Context())
	slog.Info("demo content seeded via admin endpoint")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Database seeded successfully"})
}
