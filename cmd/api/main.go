package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bookrental/internal/auth"
	"github.com/geocoder89/bookrental/internal/config"
	"github.com/geocoder89/bookrental/internal/db"
	httpx "github.com/geocoder89/bookrental/internal/http"
	"github.com/geocoder89/bookrental/internal/observability"
	"github.com/geocoder89/bookrental/internal/repo/memory"
	"github.com/geocoder89/bookrental/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.SecretKey == "" {
		log.Error("SECRET_KEY is not set")
		os.Exit(1)
	}

	tokens, err := auth.NewManager(cfg.SecretKey)
	if err != nil {
		log.Error("token manager init failed", "err", err)
		os.Exit(1)
	}

	rootCtx := context.Background()

	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(rootCtx, cfg)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := config.WithTimeout(rootCtx, 5*time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps, closeStore, err := openStore(rootCtx, cfg, prom)
	if err != nil {
		log.Error("store init failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	deps.Tokens = tokens
	deps.Prom = prom
	deps.Gatherer = reg

	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(rootCtx, 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// openStore wires the repositories for the configured backend. The memory
// backend is for local runs and demos; nothing survives a restart.
func openStore(ctx context.Context, cfg config.Config, prom *observability.Prom) (httpx.Deps, func(), error) {
	if cfg.Store == "memory" {
		store := memory.NewStore()
		if err := db.EnsureAdminUser(ctx, store.Users(), cfg); err != nil {
			return httpx.Deps{}, nil, fmt.Errorf("admin seed: %w", err)
		}

		return httpx.Deps{
			Users:      store.Users(),
			Books:      store.Books(),
			Categories: store.Categories(),
			Rentals:    store.Rentals(),
			History:    store.History(),
		}, func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return httpx.Deps{}, nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return httpx.Deps{}, nil, err
		}
	}

	users := postgres.NewUsersRepo(pool, prom)

	seedCtx, cancel := config.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.EnsureAdminUser(seedCtx, users, cfg); err != nil {
		pool.Close()
		return httpx.Deps{}, nil, fmt.Errorf("admin seed: %w", err)
	}

	return httpx.Deps{
		Users:      users,
		Books:      postgres.NewBooksRepo(pool, prom),
		Categories: postgres.NewCategoriesRepo(pool, prom),
		Rentals:    postgres.NewRentalsRepo(pool, prom),
		History:    postgres.NewHistoryRepo(pool, prom),
		Ping: func() error {
			pctx, cancel := config.WithTimeout(ctx, time.Second)
			defer cancel()
			return pool.Ping(pctx)
		},
	}, pool.Close, nil
}
