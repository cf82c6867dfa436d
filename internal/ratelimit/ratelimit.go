package ratelimit

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/repository"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Minute
)

type Config struct {
	Limit  int           // запросов на ключ за окно
	Window time.Duration // фиксированное окно
}

// Result - вердикт лимитера. RetryAfter в целых секундах, округление вверх,
// чтобы клиент не пришел на долю секунды раньше сброса окна.
type Result struct {
	Allowed    bool
	Count      int64
	RetryAfter int
}

// Limiter - лимитер фиксированного окна поверх атомарного счетчика.
// Fail-open: если бэкенд счетчика лег, запрос пропускается - деградация
// лимитера не должна останавливать сервис анализа.
type Limiter struct {
	counter repository.RateCounter
	limit   int64
	window  time.Duration
	logger  *zap.Logger
}

func New(counter repository.RateCounter, cfg Config, logger *zap.Logger) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		counter: counter,
		limit:   int64(cfg.Limit),
		window:  cfg.Window,
		logger:  logger,
	}
}

// Check инкрементит счетчик ключа и сравнивает с лимитом. Первый запрос
// в окне создает счетчик, запрос limit+1 получает отказ с RetryAfter.
func (l *Limiter) Check(ctx context.Context, key string) Result {
	count, remaining, err := l.counter.Incr(ctx, key, l.window)
	if err != nil {
		l.logger.Warn("rate counter unavailable, allowing request",
			zap.String("key", key),
			zap.Error(err),
		)
		return Result{Allowed: true, Count: 0}
	}

	if count > l.limit {
		return Result{
			Allowed:    false,
			Count:      count,
			RetryAfter: retryAfterSeconds(remaining),
		}
	}
	return Result{Allowed: true, Count: count}
}

func retryAfterSeconds(remaining time.Duration) int {
	secs := int(math.Ceil(remaining.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
