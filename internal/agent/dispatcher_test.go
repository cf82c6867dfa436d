package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm/mock"
)

var registrationOrder = []string{"style", "naming", "minimalism", "docstring", "security"}

func TestDispatch_AlwaysFiveResultsInOrder(t *testing.T) {
	tests := []struct {
		name   string
		client *mock.Client
	}{
		{"all agents succeed", mock.New()},
		{"all agents fail", mock.New().WithError(errors.New("llm down"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(NewAllAgents(tt.client, nil), DispatcherConfig{}, nil)
			results := d.Dispatch(context.Background(), "x = 1", "python")

			if len(results) != 5 {
				t.Fatalf("Dispatch() returned %d results, want 5", len(results))
			}
			for i, r := range results {
				if r.Agent != registrationOrder[i] {
					t.Errorf("results[%d].Agent = %q, want %q", i, r.Agent, registrationOrder[i])
				}
			}
		})
	}
}

func TestDispatch_AllAgentsFailStillCompletes(t *testing.T) {
	client := mock.New().WithError(errors.New("provider outage"))
	d := NewDispatcher(NewAllAgents(client, nil), DispatcherConfig{}, nil)

	results := d.Dispatch(context.Background(), "x = 1", "go")

	for _, r := range results {
		if r.Error == "" {
			t.Errorf("agent %s: expected error string", r.Agent)
		}
		if len(r.Suggestions) != 0 {
			t.Errorf("agent %s: expected zero suggestions", r.Agent)
		}
	}
}

// Один медленный агент получает timeout, соседи отвечают нормально.
func TestDispatch_SlowAgentIsolation(t *testing.T) {
	fast := mock.New().WithResponse(`{"suggestions": [{"message": "ok finding", "severity": 2, "confidence": 0.8}]}`)
	slow := mock.New().WithDelay(500 * time.Millisecond)

	agents := []Agent{
		NewStyleAgent(fast, nil),
		NewNamingAgent(slow, nil), // зависнет
		NewMinimalismAgent(fast, nil),
		NewDocstringAgent(fast, nil),
		NewSecurityAgent(fast, nil),
	}

	d := NewDispatcher(agents, DispatcherConfig{
		AgentTimeout: 50 * time.Millisecond,
		TotalTimeout: 200 * time.Millisecond,
	}, nil)

	start := time.Now()
	results := d.Dispatch(context.Background(), "x = 1", "go")
	took := time.Since(start)

	if len(results) != 5 {
		t.Fatalf("got %d results, want 5", len(results))
	}

	if results[1].Error != "timeout" {
		t.Errorf("slow agent error = %q, want timeout", results[1].Error)
	}
	if len(results[1].Suggestions) != 0 {
		t.Errorf("slow agent returned %d suggestions, want 0", len(results[1].Suggestions))
	}

	for _, i := range []int{0, 2, 3, 4} {
		if results[i].Error != "" {
			t.Errorf("sibling %s affected by slow agent: error = %q", results[i].Agent, results[i].Error)
		}
		if len(results[i].Suggestions) != 1 {
			t.Errorf("sibling %s returned %d suggestions, want 1", results[i].Agent, len(results[i].Suggestions))
		}
	}

	if took > time.Second {
		t.Errorf("dispatch took %v, the per-agent timeout did not bound it", took)
	}
}

type panickyAgent struct{}

func (p *panickyAgent) Name() string { return "naming" }
func (p *panickyAgent) Analyze(ctx context.Context, code, language string) domain.AgentResult {
	panic("index out of range")
}

func TestDispatch_PanicBecomesErrorResult(t *testing.T) {
	fast := mock.New()
	agents := []Agent{
		NewStyleAgent(fast, nil),
		&panickyAgent{},
		NewMinimalismAgent(fast, nil),
		NewDocstringAgent(fast, nil),
		NewSecurityAgent(fast, nil),
	}

	d := NewDispatcher(agents, DispatcherConfig{}, nil)
	results := d.Dispatch(context.Background(), "x = 1", "go")

	if results[1].Error == "" {
		t.Error("panicking agent should produce an error result")
	}
	for _, i := range []int{0, 2, 3, 4} {
		if results[i].Error != "" {
			t.Errorf("sibling %s affected by panic: %q", results[i].Agent, results[i].Error)
		}
	}
}

func TestNewDispatcher_TotalTimeoutAlwaysExceedsAgentTimeout(t *testing.T) {
	d := NewDispatcher(nil, DispatcherConfig{
		AgentTimeout: 10 * time.Second,
		TotalTimeout: 5 * time.Second, // меньше агентского - невалидно
	}, nil)

	if d.totalTimeout <= d.agentTimeout {
		t.Errorf("totalTimeout = %v must be strictly greater than agentTimeout = %v", d.totalTimeout, d.agentTimeout)
	}
}

func TestDispatch_Defaults(t *testing.T) {
	d := NewDispatcher(nil, DispatcherConfig{}, nil)
	if d.agentTimeout != DefaultAgentTimeout {
		t.Errorf("agentTimeout = %v, want %v", d.agentTimeout, DefaultAgentTimeout)
	}
	if d.totalTimeout != DefaultTotalTimeout {
		t.Errorf("totalTimeout = %v, want %v", d.totalTimeout, DefaultTotalTimeout)
	}
}
