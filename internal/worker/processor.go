package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/repository"
	"github.com/kitbuilder587/codecritic/internal/rl"
)

const (
	// PollInterval - пауза после пустой выборки.
	PollInterval = time.Second
	// MaxBatch - сколько сообщений забираем за один Dequeue.
	MaxBatch = 10
	// MaxBackoff - потолок экспоненциального отступа при ошибках очереди.
	MaxBackoff = 60 * time.Second
)

// Processor - долгоживущий воркер: тянет отзывы из очереди и применяет их
// к весам. Удаляет сообщение только после успешного апдейта; упавшее
// вернется в очередь по visibility timeout. Невалидный отзыв удаляется
// сразу - от повторных попыток он валиднее не станет.
type Processor struct {
	queue   repository.FeedbackQueue
	trainer *rl.Trainer
	metrics *metrics.Metrics
	logger  *zap.Logger

	poll time.Duration
}

func NewProcessor(queue repository.FeedbackQueue, trainer *rl.Trainer, m *metrics.Metrics, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		queue:   queue,
		trainer: trainer,
		metrics: m,
		logger:  logger,
		poll:    PollInterval,
	}
}

// Run крутит цикл до отмены контекста. Ошибки очереди не роняют воркер:
// экспоненциальный отступ и новая попытка.
func (p *Processor) Run(ctx context.Context) {
	p.logger.Info("feedback processor starting")
	backoff := time.Second

	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info("feedback processor stopped")
			return
		}

		items, err := p.queue.Dequeue(ctx, MaxBatch)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				p.logger.Info("feedback processor stopped")
				return
			}
			p.logger.Error("queue poll failed",
				zap.Error(err),
				zap.Duration("backoff", backoff),
			)
			if !sleep(ctx, backoff) {
				return
			}
			backoff = backoff * 2
			if backoff > MaxBackoff {
				backoff = MaxBackoff
			}
			continue
		}
		backoff = time.Second

		if len(items) == 0 {
			if !sleep(ctx, p.poll) {
				return
			}
			continue
		}

		p.logger.Info("processing feedback batch", zap.Int("count", len(items)))
		acked := p.processBatch(ctx, items)

		if err := p.queue.Ack(ctx, acked); err != nil {
			// неудачный Ack означает повторную доставку, апдейт весов
			// применится дважды. Цена ошибки - лишние 0.25 к весу, терпимо.
			p.logger.Error("ack failed", zap.Error(err))
		}
	}
}

// processBatch применяет отзывы по одному и возвращает id на подтверждение.
func (p *Processor) processBatch(ctx context.Context, items []repository.QueuedFeedback) []int64 {
	acked := make([]int64, 0, len(items))
	for _, it := range items {
		newWeight, err := p.trainer.Apply(ctx, it.Feedback)
		switch {
		case err == nil:
			acked = append(acked, it.ID)
			if p.metrics != nil {
				p.metrics.RecordFeedbackProcessed("ok")
				p.metrics.SetAgentWeight(it.Feedback.Agent, newWeight)
			}
		case errors.Is(err, domain.ErrUnknownAgent), errors.Is(err, domain.ErrInvalidRating):
			p.logger.Warn("dropping invalid feedback",
				zap.Int64("id", it.ID),
				zap.String("agent", it.Feedback.Agent),
				zap.Error(err),
			)
			acked = append(acked, it.ID)
			if p.metrics != nil {
				p.metrics.RecordFeedbackProcessed("invalid")
			}
		default:
			p.logger.Error("feedback apply failed, will retry",
				zap.Int64("id", it.ID),
				zap.Error(err),
			)
			if p.metrics != nil {
				p.metrics.RecordFeedbackProcessed("error")
			}
		}
	}
	return acked
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
