// Package router sets up all HTTP routes and middleware chains for the
// newsroom API. Reads are public; writes and the admin group sit behind
// the admin basic-auth guard.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"newsroom/internal/handlers"
	"newsroom/internal/middleware"
)

// Deps carries the handler groups and guards the router wires together.
type Deps struct {
	Categories *handlers.Categories
	Posts      *handlers.Posts
	Admin      *handlers.Admin

	// AdminEmail and AdminPasswordHash configure basic auth. An empty
	// hash leaves every route open.
	AdminEmail        string
	AdminPasswordHash string

	// ViewLimiter throttles view increments per client. Nil disables it.
	ViewLimiter *middleware.RateLimiter

	// TrustProxy rewrites RemoteAddr from X-Real-IP / X-Forwarded-For.
	// Set it only behind a proxy that controls those headers.
	TrustProxy bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.NotFound(notFoundHandler)
	r.MethodNotAllowed(methodNotAllowedHandler)

	r.Get("/health", healthHandler)

	requireAdmin := middleware.AdminAuth(d.AdminEmail, d.AdminPasswordHash)
	viewLimit := func(next http.Handler) http.Handler { return next }
	if d.ViewLimiter != nil {
		viewLimit = d.ViewLimiter.Middleware
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Get("/slugify", d.Categories.Slugify)
			r.Get("/slug/{slug}", d.Categories.GetBySlug)
			r.Get("/{id}", d.Categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", d.Categories.Create)
				r.Put("/{id}", d.Categories.Update)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/slug/{slug}", d.Posts.GetBySlug)
			r.Get("/slug/{slug}/seo", d.Posts.SEO)
			r.Get("/{id}", d.Posts.Get)
			r.With(viewLimit).Post("/view/{slug}", d.Posts.View)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", d.Posts.Create)
				r.Put("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/stats", d.Admin.Stats)
			r.Post("/seed", d.Admin.Seed)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"not found"}`))
}

func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	w.Write([]byte(`{"error":"method not allowed"}`))
}
