// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/eventory/eventory/internal/auth"
	"github.com/eventory/eventory/internal/cache"
	"github.com/eventory/eventory/internal/config"
	"github.com/eventory/eventory/internal/handler"
	"github.com/eventory/eventory/internal/logging"
	"github.com/eventory/eventory/internal/middleware"
	"github.com/eventory/eventory/internal/model"
	"github.com/eventory/eventory/internal/scheduler"
	"github.com/eventory/eventory/internal/service"
	"github.com/eventory/eventory/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger := buildLogger(cfg, db)
	slog.SetDefault(logger)

	taxonomyCache, err := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTL,
		MaxSize:    cfg.CacheMaxSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer func() { _ = taxonomyCache.Close() }()

	taxonomy := service.NewTaxonomy(db, taxonomyCache, logger)
	ctx := context.Background()
	if _, err := taxonomy.EnsureSentinel(ctx); err != nil {
		return err
	}

	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	catalog := service.NewCatalog(db, taxonomy)
	bookings := service.NewBookings(db)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	sched := scheduler.New(db, logger, cfg.AuditRetention)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	router := buildRouter(cfg, db, logger, issuer, taxonomy, catalog, bookings)

	srv := &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// buildLogger creates the application logger. WARN and above are mirrored
// into the audit log.
func buildLogger(cfg *config.Config, db *sql.DB) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	var inner slog.Handler
	if cfg.IsDevelopment() {
		inner = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	return slog.New(logging.NewAuditHandler(inner, store.NewAuditStore(db)))
}

func buildRouter(
	cfg *config.Config,
	db *sql.DB,
	logger *slog.Logger,
	issuer *auth.TokenIssuer,
	taxonomy *service.Taxonomy,
	catalog *service.Catalog,
	bookings *service.Bookings,
) chi.Router {
	authHandler := handler.NewAuthHandler(store.NewUserStore(db), issuer, logger)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomy, logger)
	eventsHandler := handler.NewEventsHandler(catalog, logger)
	venuesHandler := handler.NewVenuesHandler(store.NewVenueStore(db), logger)
	bookingsHandler := handler.NewBookingsHandler(bookings, logger)
	healthHandler := handler.NewHealthHandler(db)

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitBurst)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(limiter.Handler)

	r.Get("/healthz", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", taxonomyHandler.List)
			r.Get("/tree", taxonomyHandler.Tree)
			r.Get("/{id}", taxonomyHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(issuer))
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Post("/", taxonomyHandler.Create)
				r.Patch("/{id}", taxonomyHandler.Update)
				r.Delete("/{id}", taxonomyHandler.Delete)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.MaybeAuthenticate(issuer))
				r.Get("/", eventsHandler.List)
				r.Get("/{id}", eventsHandler.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(issuer))
				r.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin))
				r.Post("/", eventsHandler.Create)
			})
		})

		r.Route("/venues", func(r chi.Router) {
			r.Get("/", venuesHandler.List)
			r.Get("/{id}", venuesHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(issuer))
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Post("/", venuesHandler.Create)
				r.Put("/{id}", venuesHandler.Update)
				r.Delete("/{id}", venuesHandler.Delete)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Use(middleware.Authenticate(issuer))
			r.Use(middleware.RequireRole(model.RoleCustomer))
			r.Post("/", bookingsHandler.Create)
			r.Get("/", bookingsHandler.List)
		})
	})

	return r
}
