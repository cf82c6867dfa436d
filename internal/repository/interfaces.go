package repository

import (
	"context"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

// WeightRepository - персистентная карта весов агентов по scope
// (пока используется единственный scope "global").
type WeightRepository interface {
	// Get возвращает полную карту весов scope или domain.ErrNotFound,
	// если записи еще нет.
	Get(ctx context.Context, scope string) (map[string]float64, error)
	// Put перезаписывает карту целиком.
	Put(ctx context.Context, scope string, weights map[string]float64) error
}

// CacheRepository - байтовое KV с TTL для кэша результатов анализа.
// Get по отсутствующему или протухшему ключу возвращает domain.ErrNotFound.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RateCounter - атомарный счетчик фиксированного окна. Первый Incr в окне
// создает счетчик с полным TTL, остальные инкрементят не трогая срок.
type RateCounter interface {
	// Incr возвращает значение счетчика после инкремента и остаток окна.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}

// QueuedFeedback - элемент очереди с идентификатором доставки.
type QueuedFeedback struct {
	ID       int64
	Feedback domain.Feedback
}

// FeedbackQueue - очередь фидбека между API и RL-воркером. Dequeue выдает
// элементы с visibility timeout: пока воркер не сделал Ack, элемент скрыт
// от других воркеров, но вернется в очередь после истечения срока.
type FeedbackQueue interface {
	Enqueue(ctx context.Context, fb domain.Feedback) error
	Dequeue(ctx context.Context, limit int) ([]QueuedFeedback, error)
	Ack(ctx context.Context, ids []int64) error
}
