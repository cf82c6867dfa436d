package rl

import (
	"context"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

// Alpha - learning rate. Маленький намеренно: чтобы заметно сдвинуть вес,
// нужно порядка двадцати единодушных отзывов, тройка троллей погоды не делает.
const Alpha = 0.05

// Reward переводит отзыв в число: accepted дает +rating, rejected -rating.
// Диапазон [-5, +5].
func Reward(accepted bool, rating int) float64 {
	if accepted {
		return float64(rating)
	}
	return float64(-rating)
}

// WeightDelta - шаг изменения веса за один отзыв.
func WeightDelta(accepted bool, rating int) float64 {
	return Alpha * Reward(accepted, rating)
}

// Trainer применяет отзывы к хранилищу весов.
type Trainer struct {
	store  *weights.Store
	logger *zap.Logger
}

func NewTrainer(store *weights.Store, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{store: store, logger: logger}
}

// Apply валидирует отзыв и сдвигает вес агента. Возвращает новый вес.
func (t *Trainer) Apply(ctx context.Context, fb domain.Feedback) (float64, error) {
	if err := fb.Validate(); err != nil {
		return 0, err
	}

	delta := WeightDelta(fb.Accepted, fb.Rating)
	next := t.store.Update(ctx, weights.ScopeGlobal, fb.Agent, delta)

	t.logger.Info("feedback applied",
		zap.String("agent", fb.Agent),
		zap.Bool("accepted", fb.Accepted),
		zap.Int("rating", fb.Rating),
		zap.Float64("delta", delta),
		zap.Float64("weight", next),
	)
	return next, nil
}
