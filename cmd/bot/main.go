package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/agent"
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
	"github.com/kitbuilder587/codecritic/internal/telegram"
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

	if cfg.Telegram.Token == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		weightRepo repository.WeightRepository
		cacheRepo  repository.CacheRepository
		counter    repository.RateCounter
		queue      repository.FeedbackQueue
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
	default:
		memCounter := repository.NewMemoryRateCounter().WithCleanup()
		defer memCounter.Stop()

		weightRepo = repository.NewMemoryWeightRepository()
		cacheRepo = memory.NewWithContext(ctx)
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
	analyzer := service.NewAnalyzer(
		dispatcher,
		cache.New(cacheRepo, cfg.Cache.TTL, logger),
		weightStore,
		m,
		logger,
	)
	feedbackSvc := service.NewFeedbackService(queue, m, logger)
	limiter := ratelimit.New(counter, ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
	}, logger)

	// памятная очередь видна только этому процессу, дорабатываем фидбек
	// прямо здесь; с postgres это делает cmd/worker
	if cfg.Store.Type != "postgres" {
		processor := worker.NewProcessor(queue, rl.NewTrainer(weightStore, logger), m, logger)
		go processor.Run(ctx)
	}

	bot, err := telegram.New(telegram.BotConfig{
		Token: cfg.Telegram.Token,
		Debug: cfg.Telegram.Debug,
	}, analyzer, feedbackSvc, weightStore, limiter, logger, m)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}

	logger.Info("starting telegram bot")
	if err := bot.Run(ctx); err != nil {
		logger.Error("bot stopped with error", zap.Error(err))
		return
	}
	logger.Info("bot stopped")
}
