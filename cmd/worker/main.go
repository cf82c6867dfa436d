package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/config"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/repository/postgres"
	"github.com/kitbuilder587/codecritic/internal/rl"
	"github.com/kitbuilder587/codecritic/internal/weights"
	"github.com/kitbuilder587/codecritic/internal/worker"
)

// Воркер обрабатывает очередь фидбека и двигает веса агентов.
// Работает только с postgres: памятная очередь не видна из другого
// процесса, в памятном режиме обработку запускает сам cmd/server.
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

	if cfg.Store.Type != "postgres" {
		logger.Fatal("worker requires STORE_TYPE=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	queue := postgres.NewFeedbackQueueRepo(db)
	store := weights.NewStore(postgres.NewWeightRepo(db), logger)
	trainer := rl.NewTrainer(store, logger)

	processor := worker.NewProcessor(queue, trainer, metrics.New(), logger)

	// заодно подчищаем протухшие записи кеша
	cacheRepo := postgres.NewCacheRepo(db)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := cacheRepo.Purge(ctx)
				if err != nil {
					logger.Warn("cache purge failed", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("purged expired cache entries", zap.Int64("count", n))
				}
			}
		}
	}()

	logger.Info("starting feedback worker")
	processor.Run(ctx)
	logger.Info("worker stopped")
}
