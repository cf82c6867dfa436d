package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/repository"
)

// DefaultTTL - неделя. Код не меняется - результат анализа не меняется,
// так что TTL скорее про гигиену хранилища, чем про свежесть.
const DefaultTTL = 7 * 24 * time.Hour

const keyPrefix = "analysis:"

// AnalysisCache - кэш результатов поверх байтового бэкенда. Полностью
// fail-open: любая ошибка бэкенда на чтении превращается в промах, на
// записи - в предупреждение в логе. Анализ никогда не падает из-за кэша.
type AnalysisCache struct {
	repo   repository.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

func New(repo repository.CacheRepository, ttl time.Duration, logger *zap.Logger) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisCache{repo: repo, ttl: ttl, logger: logger}
}

// Get возвращает закешированный результат по отпечатку кода или nil при
// промахе. Ошибки бэкенда и битый JSON считаются промахом.
func (c *AnalysisCache) Get(ctx context.Context, fingerprint string) *domain.AnalysisResult {
	raw, err := c.repo.Get(ctx, keyPrefix+fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.logger.Warn("cache read failed, treating as miss",
				zap.String("fingerprint", fingerprint),
				zap.Error(err),
			)
		}
		return nil
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("cache entry is corrupt, treating as miss",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
		return nil
	}
	return &result
}

// Set пишет результат best-effort. Возвращает false если запись не удалась;
// вызывающий продолжает как ни в чем не бывало.
func (c *AnalysisCache) Set(ctx context.Context, fingerprint string, result *domain.AnalysisResult) bool {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache marshal failed",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
		return false
	}

	if err := c.repo.Set(ctx, keyPrefix+fingerprint, raw, c.ttl); err != nil {
		c.logger.Warn("cache write failed",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
		return false
	}
	return true
}

// Delete - инвалидация записи, тот же fail-soft контракт.
func (c *AnalysisCache) Delete(ctx context.Context, fingerprint string) {
	if err := c.repo.Delete(ctx, keyPrefix+fingerprint); err != nil {
		c.logger.Warn("cache delete failed",
			zap.String("fingerprint", fingerprint),
			zap.Error(err),
		)
	}
}
