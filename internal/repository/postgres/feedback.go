package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/repository"
)

// DefaultVisibility - сколько захваченный элемент скрыт от других воркеров.
// Упавший воркер не теряет сообщение: по истечении срока оно снова видимо.
const DefaultVisibility = 30 * time.Second

type FeedbackQueueRepo struct {
	db         *DB
	visibility time.Duration
}

func NewFeedbackQueueRepo(db *DB) *FeedbackQueueRepo {
	return &FeedbackQueueRepo{db: db, visibility: DefaultVisibility}
}

func (r *FeedbackQueueRepo) WithVisibility(d time.Duration) *FeedbackQueueRepo {
	r.visibility = d
	return r
}

func (r *FeedbackQueueRepo) Enqueue(ctx context.Context, fb domain.Feedback) error {
	payload, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}

	query := `INSERT INTO feedback_queue (payload) VALUES ($1)`
	if _, err := r.db.Pool.Exec(ctx, query, payload); err != nil {
		return fmt.Errorf("enqueue feedback: %w", err)
	}
	return nil
}

// Dequeue захватывает до limit элементов. SKIP LOCKED, чтобы параллельные
// воркеры не дрались за одни и те же строки.
func (r *FeedbackQueueRepo) Dequeue(ctx context.Context, limit int) ([]repository.QueuedFeedback, error) {
	query := `
        UPDATE feedback_queue SET claimed_at = now()
        WHERE id IN (
            SELECT id FROM feedback_queue
            WHERE claimed_at IS NULL OR claimed_at < now() - $2 * interval '1 second'
            ORDER BY id
            LIMIT $1
            FOR UPDATE SKIP LOCKED
        )
        RETURNING id, payload
    `

	rows, err := r.db.Pool.Query(ctx, query, limit, r.visibility.Seconds())
	if err != nil {
		return nil, fmt.Errorf("dequeue feedback: %w", err)
	}
	defer rows.Close()

	var out []repository.QueuedFeedback
	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}

		var fb domain.Feedback
		if err := json.Unmarshal(payload, &fb); err != nil {
			return nil, fmt.Errorf("decode feedback %d: %w", id, err)
		}
		out = append(out, repository.QueuedFeedback{ID: id, Feedback: fb})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}
	return out, nil
}

func (r *FeedbackQueueRepo) Ack(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM feedback_queue WHERE id = ANY($1)`
	if _, err := r.db.Pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("ack feedback: %w", err)
	}
	return nil
}
