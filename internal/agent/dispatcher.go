package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

const (
	DefaultAgentTimeout = 8 * time.Second
	DefaultTotalTimeout = 12 * time.Second
)

type DispatcherConfig struct {
	AgentTimeout time.Duration // на одного агента
	TotalTimeout time.Duration // страховка на весь fan-out
}

// Dispatcher запускает всех агентов параллельно над одним read-only входом.
// Изоляция структурная: таймаут или паника одного агента не трогает соседей,
// а результат всегда содержит ровно по слоту на агента в порядке регистрации.
type Dispatcher struct {
	agents       []Agent
	agentTimeout time.Duration
	totalTimeout time.Duration
	logger       *zap.Logger
}

func NewDispatcher(agents []Agent, cfg DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AgentTimeout <= 0 {
		cfg.AgentTimeout = DefaultAgentTimeout
	}
	if cfg.TotalTimeout <= cfg.AgentTimeout {
		// общий дедлайн обязан быть строго больше агентского
		cfg.TotalTimeout = cfg.AgentTimeout + DefaultTotalTimeout - DefaultAgentTimeout
	}

	return &Dispatcher{
		agents:       agents,
		agentTimeout: cfg.AgentTimeout,
		totalTimeout: cfg.TotalTimeout,
		logger:       logger,
	}
}

// Dispatch всегда возвращает len(agents) результатов в порядке регистрации,
// сколько бы агентов ни упало и ни зависло.
func (d *Dispatcher) Dispatch(ctx context.Context, code, language string) []domain.AgentResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, d.totalTimeout)
	defer cancel()

	results := make([]domain.AgentResult, len(d.agents))
	g := new(errgroup.Group)

	for i, a := range d.agents {
		i, a := i, a // capture for goroutine
		g.Go(func() error {
			results[i] = d.runOne(ctx, a, code, language)
			return nil
		})
	}

	g.Wait()

	d.logger.Info("dispatch finished",
		zap.Duration("took", time.Since(start)),
		zap.Int("agents", len(results)),
	)
	return results
}

// runOne гоняет одного агента под его собственным дедлайном. Агент, который
// завис или запаниковал, превращается в результат с Error; горутина с ним
// не осиротеет - канал буферизован, а cancel обрывает его LLM-вызов.
func (d *Dispatcher) runOne(ctx context.Context, a Agent, code, language string) domain.AgentResult {
	actx, cancel := context.WithTimeout(ctx, d.agentTimeout)
	defer cancel()

	resCh := make(chan domain.AgentResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("agent panicked",
					zap.String("agent", a.Name()),
					zap.Any("panic", r),
				)
				resCh <- domain.AgentResult{
					Agent:       a.Name(),
					Suggestions: []domain.Suggestion{},
					Error:       fmt.Sprintf("panic: %v", r),
				}
			}
		}()
		resCh <- a.Analyze(actx, code, language)
	}()

	select {
	case res := <-resCh:
		return res
	case <-actx.Done():
		d.logger.Warn("agent timed out",
			zap.String("agent", a.Name()),
			zap.Duration("timeout", d.agentTimeout),
		)
		return domain.AgentResult{
			Agent:       a.Name(),
			Suggestions: []domain.Suggestion{},
			TookMs:      d.agentTimeout.Milliseconds(),
			Error:       "timeout",
		}
	}
}
