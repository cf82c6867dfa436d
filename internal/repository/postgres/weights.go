package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

type WeightRepo struct {
	db *DB
}

func NewWeightRepo(db *DB) *WeightRepo {
	return &WeightRepo{db: db}
}

func (r *WeightRepo) Get(ctx context.Context, scope string) (map[string]float64, error) {
	query := `SELECT weights FROM agent_weights WHERE scope = $1`

	var raw []byte
	err := r.db.Pool.QueryRow(ctx, query, scope).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get weights: %w", err)
	}

	var weights map[string]float64
	if err := json.Unmarshal(raw, &weights); err != nil {
		return nil, fmt.Errorf("decode weights: %w", err)
	}
	return weights, nil
}

func (r *WeightRepo) Put(ctx context.Context, scope string, weights map[string]float64) error {
	raw, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}

	query := `
        INSERT INTO agent_weights (scope, weights)
        VALUES ($1, $2)
        ON CONFLICT (scope) DO UPDATE SET weights = EXCLUDED.weights, updated_at = now()
    `

	if _, err := r.db.Pool.Exec(ctx, query, scope, raw); err != nil {
		return fmt.Errorf("put weights: %w", err)
	}
	return nil
}
