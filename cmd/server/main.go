package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yieldscope/apy-tracker/internal/cache"
	"github.com/yieldscope/apy-tracker/internal/chainscan"
	"github.com/yieldscope/apy-tracker/internal/config"
	"github.com/yieldscope/apy-tracker/internal/handler"
	"github.com/yieldscope/apy-tracker/internal/ingest"
	"github.com/yieldscope/apy-tracker/internal/metrics"
	"github.com/yieldscope/apy-tracker/internal/middleware"
	"github.com/yieldscope/apy-tracker/internal/position"
	"github.com/yieldscope/apy-tracker/internal/source"
	"github.com/yieldscope/apy-tracker/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected and migrated")

	// Redis cache, optional. The APR endpoint degrades to store reads
	// when redis is absent.
	var aprCache *cache.Cache
	if cfg.RedisURL != "" {
		aprCache, err = cache.New(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, serving APR uncached", "error", err)
			aprCache = nil
		} else {
			defer aprCache.Close()
			logger.Info("redis connected for APR cache")
		}
	}

	// Chain scanner, optional. Without an API key ledger entries keep the
	// status the client posted.
	var scanner *chainscan.Client
	if cfg.EtherscanAPIKey != "" {
		scanner = chainscan.New(cfg.EtherscanAPIKey)
	}

	reporter := metrics.NewReporter()

	// Yield sources: the subgraph is authoritative, the REST API covers
	// its outages.
	chain := source.NewChain(
		source.NewSubgraph(cfg.SubgraphURL),
		source.NewCurve(cfg.CurveAPIURL),
		logger,
		reporter,
	)

	sched := ingest.New(chain, db, ingest.Config{
		Interval:      cfg.IngestInterval,
		RetentionDays: cfg.RetentionDays,
		MaxAttempts:   cfg.IngestMaxAttempts,
	}, logger, reporter)
	go sched.Run(ctx)

	agg := position.NewAggregator(db, db, logger)

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(db))

	r.Route("/api", func(r chi.Router) {
		r.Get("/pools", handler.ListPools(db))
		r.Get("/pools/{poolID}/history", handler.PoolHistory(db))
		r.Get("/pools/{poolID}/current", handler.PoolCurrent(db))
		r.Get("/pools/{poolID}/apr", handler.PoolAPR(db, aprCache))
		r.Post("/pools/forecast", handler.Forecast(db))

		r.Post("/earnings", handler.RecordEarnings(agg))
		r.Get("/positions", handler.GetPositions(agg))

		r.Post("/transactions/deposits", handler.CreateDeposit(db, scanner))
		r.Get("/transactions/deposits", handler.ListDeposits(db))
		r.Post("/transactions/withdrawals", handler.CreateWithdrawal(db, scanner))
		r.Get("/transactions/withdrawals", handler.ListWithdrawals(db))

		r.Get("/ingest/status", handler.IngestStatus(sched))
		r.Post("/ingest/trigger", handler.TriggerIngest(sched))
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
