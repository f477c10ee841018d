// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command mocnha runs the Mộc Nhà storefront API: a bilingual (Vietnamese /
// Chinese) furniture catalog with an AI-assisted translation pipeline.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/mocnha/mocnha-go/internal/auth"
	"github.com/mocnha/mocnha-go/internal/cache"
	"github.com/mocnha/mocnha-go/internal/config"
	"github.com/mocnha/mocnha-go/internal/handler/api"
	"github.com/mocnha/mocnha-go/internal/logging"
	"github.com/mocnha/mocnha-go/internal/middleware"
	"github.com/mocnha/mocnha-go/internal/model"
	"github.com/mocnha/mocnha-go/internal/scheduler"
	"github.com/mocnha/mocnha-go/internal/store"
	"github.com/mocnha/mocnha-go/internal/translate"
	"github.com/mocnha/mocnha-go/internal/version"
)

// Build-time version information injected via ldflags.
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: mocnha [options]\n\nOptions:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_DB_PATH               SQLite database path (default: ./data/mocnha.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_REDIS_URL             Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_AI_PROVIDER           Translation provider: openai|openai_compat (default: openai)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_AI_API_KEY            Translation provider API key\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_AI_BASE_URL           Base URL for openai_compat providers\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_DO_SEED               Seed languages and the admin user on startup\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOCNHA_ADMIN_PASSWORD        Initial admin password (required when seeding)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("mocnha %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// Route timeouts. AI routes wait on the provider (120 s client cap) and bulk
// runs additionally pace items 1.5 s apart while the response stays open, so
// they cannot live under the plain request timeout.
const (
	requestTimeout = 30 * time.Second
	bulkRunTimeout = 10 * time.Minute
)

func newRouter(apiHandler *api.Handler, db *sql.DB) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	// 10 req/s with burst 20 per client IP on the public surface
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(requestTimeout))
			r.Use(publicRateLimiter.Middleware())
			r.Use(middleware.DetectLang)

			r.Get("/status", apiHandler.Status)
			r.Get("/categories/tree", apiHandler.CategoryTree)
			r.Get("/categories/{id}", apiHandler.GetCategory)
			r.Get("/products", apiHandler.ListProducts)
			r.Get("/products/{id}", apiHandler.GetProduct)
			r.Get("/translations", apiHandler.TranslationBundle)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(db))
			r.Use(middleware.APIRateLimit(30.0, 60))

			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(requestTimeout))

				r.With(middleware.RequirePermission(model.PermissionCatalogRead)).
					Get("/categories/tree", apiHandler.AdminCategoryTree)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(model.PermissionCatalogWrite))
					r.Post("/categories", apiHandler.CreateCategory)
					r.Put("/categories/{id}", apiHandler.UpdateCategory)
					r.Delete("/categories/{id}", apiHandler.DeleteCategory)
				})

				r.With(middleware.RequirePermission(model.PermissionProductsRead)).
					Get("/products", apiHandler.AdminListProducts)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(model.PermissionProductsWrite))
					r.Post("/products", apiHandler.CreateProduct)
					r.Put("/products/{id}", apiHandler.UpdateProduct)
					r.Delete("/products/{id}", apiHandler.DeleteProduct)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(model.PermissionTranslationsRead))
					r.Get("/translations", apiHandler.ListTranslationKeys)
					r.Get("/translations/stats", apiHandler.TranslationStats)
					r.Get("/translations/{id}", apiHandler.GetTranslationKey)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(model.PermissionTranslationsWrite))
					r.Post("/translations", apiHandler.CreateTranslationKey)
					r.Post("/translations/{id}/review", apiHandler.ReviewTranslation)
					r.Delete("/translations/{id}", apiHandler.DeleteTranslationKey)
				})
			})

			// Provider-calling routes get the long timeout.
			r.Group(func(r chi.Router) {
				r.Use(chimw.Timeout(bulkRunTimeout))
				r.Use(middleware.RequirePermission(model.PermissionTranslationsWrite))
				r.Post("/translations/ai-translate", apiHandler.BatchAITranslation)
				r.Post("/translations/{id}/ai-translate", apiHandler.RequestAITranslation)
				r.Post("/products/translate-all", apiHandler.TranslateAllProducts)
				r.Post("/categories/translate-all", apiHandler.TranslateAllCategories)
			})
		})
	})

	return r
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	slog.Info("starting mocnha", "version", versionInfo.Version, "commit", versionInfo.GitCommit)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	queries := store.New(db)

	if cfg.DoSeed {
		passwordHash, err := auth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if err := queries.Seed(ctx, cfg.AdminEmail, passwordHash); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded", "admin", cfg.AdminEmail)
	}

	// Cache backend: Redis when configured, in-process memory otherwise
	cacheConfig := cache.Config{
		Type:            "memory",
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTLDuration(),
		CleanupInterval: time.Minute,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	backend, err := cache.NewCache(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	storefront := cache.NewStorefront(backend, cfg.CacheTTLDuration())
	slog.Info("cache initialized", "backend", cacheConfig.Type, "ttl", cacheConfig.DefaultTTL)

	// Translation provider
	var provider translate.Provider
	switch {
	case !cfg.AIConfigured():
		provider = translate.NewDisabledProvider()
		slog.Warn("no translation provider configured, AI translation disabled")
	case cfg.AIProvider == translate.ProviderCompat:
		provider = translate.NewCompatProvider(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
		slog.Info("translation provider initialized", "provider", cfg.AIProvider, "model", cfg.AIModel, "base_url", cfg.AIBaseURL)
	default:
		provider = translate.NewOpenAIProvider(cfg.AIAPIKey, cfg.AIModel)
		slog.Info("translation provider initialized", "provider", translate.ProviderOpenAI, "model", cfg.AIModel)
	}
	pipeline := translate.NewPipeline(queries, provider, logger)

	// Background maintenance jobs
	sched := scheduler.New(db, logger, cfg.StaleRequestMaxAge)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	apiHandler := api.NewHandler(db, pipeline, storefront, logger)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           newRouter(apiHandler, db),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// Must outlast bulkRunTimeout or long translation runs lose the
		// connection before the summary is written.
		WriteTimeout:   bulkRunTimeout + time.Minute,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
