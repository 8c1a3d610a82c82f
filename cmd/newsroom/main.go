// Package main is the entry point for the newsroom API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsroom/internal/cache"
	"newsroom/internal/config"
	"newsroom/internal/database"
	"newsroom/internal/handlers"
	"newsroom/internal/middleware"
	"newsroom/internal/router"
	"newsroom/internal/service"
	"newsroom/internal/store"
	"newsroom/internal/store/memstore"
)

// repositories is the storage backend selected by STORE_DRIVER.
type repositories struct {
	categories service.CategoryRepository
	posts      service.PostRepository
	close      func() error
}

// openRepositories connects the configured backend. Postgres is migrated
// before use.
func openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		return &repositories{
			categories: memstore.NewCategoryStore(),
			posts:      memstore.NewPostStore(),
			close:      func() error { return nil },
		}, nil
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &repositories{
		categories: store.NewCategoryStore(db),
		posts:      store.NewPostStore(db),
		close:      db.Close,
	}, nil
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var logHandler slog.Handler
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreDriver,
		"cache", cfg.CacheEnabled(),
		"auth", cfg.AdminPasswordHash != "",
	)

	repos, err := openRepositories(cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer repos.close()

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if _, err := service.Seed(context.Background(), repos.categories, repos.posts); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the response cache (optional).
	var responseCache *cache.ResponseCache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
		responseCache = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
	} else {
		slog.Warn("valkey not configured, response cache disabled")
	}

	if cfg.AdminPasswordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH not set, write and admin routes are open")
	}

	viewLimiter := middleware.NewRateLimiter(cfg.ViewRateLimit, time.Minute)
	defer viewLimiter.Stop()

	categorySvc := service.NewCategoryService(repos.categories)
	postSvc := service.NewPostService(repos.posts, repos.categories)
	statsSvc := service.NewStatsService(repos.posts, repos.categories)

	r := router.New(router.Deps{
		Categories:        handlers.NewCategories(categorySvc, responseCache),
		Posts:             handlers.NewPosts(postSvc, responseCache, handlers.Site{URL: cfg.SiteURL, Name: cfg.SiteName}),
		Admin:             handlers.NewAdmin(statsSvc, repos.categories, repos.posts, responseCache),
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		ViewLimiter:       viewLimiter,
		TrustProxy:        cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-serverErr:
		slog.Error("server failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return
	}

	slog.Info("server stopped gracefully")
}
