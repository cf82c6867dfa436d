package rl

import (
	"context"
	"math"
	"testing"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/repository"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

func TestReward(t *testing.T) {
	tests := []struct {
		name     string
		accepted bool
		rating   int
		want     float64
	}{
		{"accepted max", true, 5, 5},
		{"accepted min", true, 1, 1},
		{"rejected max", false, 5, -5},
		{"rejected min", false, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reward(tt.accepted, tt.rating); got != tt.want {
				t.Errorf("Reward(%v, %d) = %v, want %v", tt.accepted, tt.rating, got, tt.want)
			}
		})
	}
}

func TestWeightDelta(t *testing.T) {
	if got := WeightDelta(false, 5); math.Abs(got+0.25) > 1e-9 {
		t.Errorf("WeightDelta(false, 5) = %v, want -0.25", got)
	}
	if got := WeightDelta(true, 3); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("WeightDelta(true, 3) = %v, want 0.15", got)
	}
}

func TestTrainer_Apply(t *testing.T) {
	store := weights.NewStore(repository.NewMemoryWeightRepository(), nil)
	trainer := NewTrainer(store, nil)
	ctx := context.Background()

	// единичный reject с пятеркой: 1.0 - 0.25 = 0.75
	got, err := trainer.Apply(ctx, domain.Feedback{
		AnalysisID:   "an-0123456789ab",
		SuggestionID: "sty-deadbeef",
		Agent:        "style",
		Accepted:     false,
		Rating:       5,
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Apply() = %v, want 0.75", got)
	}

	if w := store.Get(ctx, weights.ScopeGlobal)["style"]; math.Abs(w-0.75) > 1e-9 {
		t.Errorf("persisted weight = %v, want 0.75", w)
	}
}

func TestTrainer_ApplyRejectsInvalidFeedback(t *testing.T) {
	store := weights.NewStore(repository.NewMemoryWeightRepository(), nil)
	trainer := NewTrainer(store, nil)
	ctx := context.Background()

	tests := []struct {
		name    string
		fb      domain.Feedback
		wantErr error
	}{
		{"unknown agent", domain.Feedback{Agent: "linter", Rating: 3}, domain.ErrUnknownAgent},
		{"rating too low", domain.Feedback{Agent: "style", Rating: 0}, domain.ErrInvalidRating},
		{"rating too high", domain.Feedback{Agent: "style", Rating: 6}, domain.ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := trainer.Apply(ctx, tt.fb); err != tt.wantErr {
				t.Errorf("Apply() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// невалидный фидбек не трогает веса
	if w := store.Get(ctx, weights.ScopeGlobal)["style"]; w != weights.DefaultWeight {
		t.Errorf("weight moved to %v after invalid feedback", w)
	}
}
