package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/repository"
)

// FeedbackService принимает отзыв и кладет его в очередь. Применение к
// весам - забота воркера, API не ждет RL.
type FeedbackService struct {
	queue   repository.FeedbackQueue
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewFeedbackService(queue repository.FeedbackQueue, m *metrics.Metrics, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{queue: queue, metrics: m, logger: logger}
}

// Enqueue валидирует и ставит отзыв в очередь. Возвращает ошибку валидации
// как есть; сбой очереди превращается в ErrQueueUnavailable.
func (s *FeedbackService) Enqueue(ctx context.Context, fb domain.Feedback) error {
	if err := fb.Validate(); err != nil {
		return err
	}

	if err := s.queue.Enqueue(ctx, fb); err != nil {
		s.logger.Error("feedback enqueue failed",
			zap.String("agent", fb.Agent),
			zap.String("suggestion_id", fb.SuggestionID),
			zap.Error(err),
		)
		return domain.ErrQueueUnavailable
	}

	s.logger.Info("feedback queued",
		zap.String("agent", fb.Agent),
		zap.String("suggestion_id", fb.SuggestionID),
		zap.Bool("accepted", fb.Accepted),
		zap.Int("rating", fb.Rating),
	)
	if s.metrics != nil {
		s.metrics.RecordFeedbackQueued()
	}
	return nil
}
