package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, url string) (*DB, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate накатывает схему. Идемпотентно, гоняется на старте каждого процесса.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
        CREATE TABLE IF NOT EXISTS agent_weights (
            scope       TEXT PRIMARY KEY,
            weights     JSONB NOT NULL,
            updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE TABLE IF NOT EXISTS analysis_cache (
            key         TEXT PRIMARY KEY,
            value       BYTEA NOT NULL,
            expires_at  TIMESTAMPTZ NOT NULL
        );

        CREATE TABLE IF NOT EXISTS rate_counters (
            key         TEXT PRIMARY KEY,
            count       BIGINT NOT NULL,
            expires_at  TIMESTAMPTZ NOT NULL
        );

        CREATE TABLE IF NOT EXISTS feedback_queue (
            id          BIGSERIAL PRIMARY KEY,
            payload     JSONB NOT NULL,
            claimed_at  TIMESTAMPTZ,
            created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
        );

        CREATE INDEX IF NOT EXISTS idx_feedback_queue_claimed
            ON feedback_queue (claimed_at NULLS FIRST, id);
    `

	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
