package postgres

import (
	"context"
	"fmt"
	"time"
)

type RateCounterRepo struct {
	db *DB
}

func NewRateCounterRepo(db *DB) *RateCounterRepo {
	return &RateCounterRepo{db: db}
}

// Incr атомарен: один upsert либо создает счетчик с полным окном, либо
// инкрементит живой, либо перезапускает истекший. Конкурентные запросы
// не теряют инкременты - гонка разрешается на уровне строки.
func (r *RateCounterRepo) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	query := `
        INSERT INTO rate_counters (key, count, expires_at)
        VALUES ($1, 1, now() + $2 * interval '1 second')
        ON CONFLICT (key) DO UPDATE SET
            count = CASE
                WHEN rate_counters.expires_at <= now() THEN 1
                ELSE rate_counters.count + 1
            END,
            expires_at = CASE
                WHEN rate_counters.expires_at <= now() THEN now() + $2 * interval '1 second'
                ELSE rate_counters.expires_at
            END
        RETURNING count, GREATEST(extract(epoch FROM (expires_at - now())), 0)
    `

	var count int64
	var secs float64
	err := r.db.Pool.QueryRow(ctx, query, key, window.Seconds()).Scan(&count, &secs)
	if err != nil {
		return 0, 0, fmt.Errorf("incr rate counter: %w", err)
	}
	return count, time.Duration(secs * float64(time.Second)), nil
}
