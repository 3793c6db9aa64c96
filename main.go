package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/draftwright/draftwright/internal/activities"
	"github.com/draftwright/draftwright/internal/config"
	"github.com/draftwright/draftwright/internal/db"
	"github.com/draftwright/draftwright/internal/health"
	"github.com/draftwright/draftwright/internal/llm"
	_ "github.com/draftwright/draftwright/internal/metrics" // register collectors
	"github.com/draftwright/draftwright/internal/prompts"
	"github.com/draftwright/draftwright/internal/search"
	tlog "github.com/draftwright/draftwright/internal/temporal"
	"github.com/draftwright/draftwright/internal/workflows"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Admin endpoints come up first so probes respond while the worker is
	// still connecting to its dependencies.
	hm := health.NewManager(logger)
	adminMux := http.NewServeMux()
	hm.RegisterRoutes(adminMux)
	adminMux.Handle("/metrics", promhttp.Handler())
	go func() {
		srv := &http.Server{
			Addr:         ":" + strconv.Itoa(cfg.AdminPort),
			Handler:      adminMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		logger.Info("Admin HTTP server listening", zap.Int("port", cfg.AdminPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Admin HTTP server failed", zap.Error(err))
		}
	}()

	promptStore, err := prompts.NewStore(cfg.PromptFile, logger)
	if err != nil {
		logger.Fatal("Failed to load prompts", zap.Error(err))
	}
	if cfg.PromptFile != "" {
		if err := promptStore.Watch(ctx); err != nil {
			logger.Warn("Prompt hot reload disabled", zap.Error(err))
		}
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := cache.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, search caching disabled", zap.Error(err))
			cache = nil
		} else {
			hm.Register(health.CheckerFunc{
				ComponentName: "redis",
				Probe:         func(ctx context.Context) error { return cache.Ping(ctx).Err() },
			})
		}
	}

	var store *db.Store
	if cfg.Database.Enabled {
		store, err = db.Open(cfg.Database.DSN, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer store.Close()
		hm.Register(health.CheckerFunc{
			ComponentName: "postgres",
			Probe:         store.Ping,
		})
	}

	llmClient := llm.NewClient(cfg.Services.GenerationURL, cfg.Services.GenerationTimeout, logger)
	searchClient := search.NewClient(search.Options{
		BaseURL:  cfg.Services.SearchURL,
		Timeout:  cfg.Services.SearchTimeout,
		RPS:      cfg.Services.SearchRPS,
		Cache:    cache,
		CacheTTL: cfg.Redis.CacheTTL,
	}, logger)

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewZapAdapter(logger),
	})
	if err != nil {
		logger.Fatal("Failed to connect to Temporal", zap.Error(err))
	}
	defer temporalClient.Close()
	hm.Register(health.CheckerFunc{
		ComponentName: "temporal",
		Critical:      true,
		Probe: func(ctx context.Context) error {
			_, err := temporalClient.CheckHealth(ctx, &client.CheckHealthRequest{})
			return err
		},
	})

	acts := activities.New(llmClient, searchClient, promptStore, store, cfg.Output.Dir, logger)

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BlogWorkflow)
	w.RegisterActivity(acts)

	logger.Info("Worker starting",
		zap.String("task_queue", cfg.Temporal.TaskQueue),
		zap.String("temporal", cfg.Temporal.HostPort),
		zap.String("generation_url", cfg.Services.GenerationURL),
		zap.Bool("search_cache", cache != nil),
		zap.Bool("run_store", store != nil),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(worker.InterruptCh()) }()

	select {
	case sig := <-stop:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
		w.Stop()
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Worker exited", zap.Error(err))
		}
	}
}
