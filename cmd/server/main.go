package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/agent"
	"github.com/kitbuilder587/codecritic/internal/api"
	"github.com/kitbuilder587/codecritic/internal/cache"
	"github.com/kitbuilder587/codecritic/internal/cache/memory"
	"github.com/kitbuilder587/codecritic/internal/config"
	"github.com/kitbuilder587/codecritic/internal/llm"
	llmmock "github.com/kitbuilder587/codecritic/internal/llm/mock"
	"github.com/kitbuilder587/codecritic/internal/llm/openai"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/ratelimit"
	"github.com/kitbuilder587/codecritic/internal/repository"
	"github.com/kitbuilder587/codecritic/internal/repository/postgres"
	"github.com/kitbuilder587/codecritic/internal/rl"
	"github.com/kitbuilder587/codecritic/internal/service"
	"github.com/kitbuilder587/codecritic/internal/weights"
	"github.com/kitbuilder587/codecritic/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		weightRepo repository.WeightRepository
		cacheRepo  repository.CacheRepository
		counter    repository.RateCounter
		queue      repository.FeedbackQueue
		storePing  func(ctx context.Context) error
	)

	switch cfg.Store.Type {
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}

		weightRepo = postgres.NewWeightRepo(db)
		cacheRepo = postgres.NewCacheRepo(db)
		counter = postgres.NewRateCounterRepo(db)
		queue = postgres.NewFeedbackQueueRepo(db)
		storePing = db.Pool.Ping
	default:
		memCache := memory.NewWithContext(ctx)
		memCounter := repository.NewMemoryRateCounter().WithCleanup()
		defer memCounter.Stop()

		weightRepo = repository.NewMemoryWeightRepository()
		cacheRepo = memCache
		counter = memCounter
		queue = repository.NewMemoryFeedbackQueue()
	}

	var client llm.Client
	switch cfg.LLM.Provider {
	case "openai":
		client = openai.New(openai.Config{
			APIKey:  cfg.LLM.OpenAI.APIKey,
			Model:   cfg.LLM.OpenAI.Model,
			BaseURL: cfg.LLM.OpenAI.BaseURL,
			Timeout: cfg.LLM.OpenAI.Timeout,
		}, logger).WithMetrics(m)
	default:
		client = llmmock.New()
	}

	dispatcher := agent.NewDispatcher(agent.NewAllAgents(client, logger), agent.DispatcherConfig{
		AgentTimeout: cfg.Dispatch.AgentTimeout,
		TotalTimeout: cfg.Dispatch.TotalTimeout,
	}, logger)

	weightStore := weights.NewStore(weightRepo, logger)
	analysisCache := cache.New(cacheRepo, cfg.Cache.TTL, logger)
	limiter := ratelimit.New(counter, ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
	}, logger)

	analyzer := service.NewAnalyzer(dispatcher, analysisCache, weightStore, m, logger)
	feedbackSvc := service.NewFeedbackService(queue, m, logger)

	// в памятном режиме очередь живет только внутри процесса, поэтому
	// фидбек обрабатываем здесь же; в postgres-режиме этим занимается
	// отдельный бинарь cmd/worker
	if cfg.Store.Type != "postgres" {
		trainer := rl.NewTrainer(weightStore, logger)
		processor := worker.NewProcessor(queue, trainer, m, logger)
		go processor.Run(ctx)
	}

	server := api.NewServer(analyzer, feedbackSvc, weightStore, limiter, m, api.ServerConfig{
		APIKeys:      cfg.APIKeySet(),
		MaxCodeBytes: cfg.API.MaxCodeBytes,
		StorePing:    storePing,
	}, logger)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.NewRouter(),
	}

	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
