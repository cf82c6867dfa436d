package scan

import (
	"context"
	"strings"
	"testing"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

func TestDuplicateCalls(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantCount int
	}{
		{
			name: "same awaited call twice in one function",
			code: `async def handler(user_id):
    profile = await fetch_user(user_id)
    again = await fetch_user(user_id)
    return profile, again
`,
			wantCount: 1,
		},
		{
			name: "different arguments are not duplicates",
			code: `async def handler():
    a = await fetch_user(1)
    b = await fetch_user(2)
    return a, b
`,
			wantCount: 0,
		},
		{
			name: "duplicates across functions are fine",
			code: `async def one():
    return await fetch_user(1)

async def two():
    return await fetch_user(1)
`,
			wantCount: 0,
		},
		{
			name: "formatting differences still match",
			code: `async def handler():
    a = await fetch_user( 1,  2 )
    b = await fetch_user(1, 2)
    return a, b
`,
			wantCount: 1,
		},
		{
			name:      "broken syntax returns nothing",
			code:      "async def handler(:\n    pass",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DuplicateCalls(context.Background(), tt.code)
			if len(got) != tt.wantCount {
				t.Fatalf("DuplicateCalls() returned %d suggestions, want %d: %+v", len(got), tt.wantCount, got)
			}
			for _, s := range got {
				if s.Agent != domain.AgentMinimalism.String() {
					t.Errorf("suggestion agent = %q, want minimalism", s.Agent)
				}
				if s.Severity != 5 || s.Confidence != 1.0 {
					t.Errorf("severity/confidence = %d/%v, want 5/1.0", s.Severity, s.Confidence)
				}
				if !strings.HasPrefix(s.ID, "min-") {
					t.Errorf("suggestion id %q missing min- prefix", s.ID)
				}
			}
		})
	}
}

func TestMutableConstants(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantCount int
	}{
		{
			name:      "uppercase list at module level",
			code:      "ALLOWED_HOSTS = [\"a\", \"b\"]\n",
			wantCount: 1,
		},
		{
			name:      "uppercase dict at module level",
			code:      "DEFAULTS = {\"retries\": 3}\n",
			wantCount: 1,
		},
		{
			name:      "lowercase list is not a constant",
			code:      "hosts = [\"a\"]\n",
			wantCount: 0,
		},
		{
			name:      "uppercase tuple is immutable",
			code:      "ALLOWED = (\"a\", \"b\")\n",
			wantCount: 0,
		},
		{
			name: "list inside function is fine",
			code: `def build():
    ITEMS = [1, 2]
    return ITEMS
`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MutableConstants(context.Background(), tt.code)
			if len(got) != tt.wantCount {
				t.Fatalf("MutableConstants() returned %d suggestions, want %d: %+v", len(got), tt.wantCount, got)
			}
		})
	}
}

func TestUnretainedTasks(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantCount int
	}{
		{
			name: "bare create_task expression",
			code: `async def main():
    asyncio.create_task(worker())
`,
			wantCount: 1,
		},
		{
			name: "task stored in variable",
			code: `async def main():
    task = asyncio.create_task(worker())
    await task
`,
			wantCount: 0,
		},
		{
			name: "awaited create_task",
			code: `async def main():
    await asyncio.create_task(worker())
`,
			wantCount: 0,
		},
		{
			name: "bare create_task without module prefix",
			code: `async def main():
    create_task(worker())
`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UnretainedTasks(context.Background(), tt.code)
			if len(got) != tt.wantCount {
				t.Fatalf("UnretainedTasks() returned %d suggestions, want %d: %+v", len(got), tt.wantCount, got)
			}
			for _, s := range got {
				if s.Agent != domain.AgentSecurity.String() {
					t.Errorf("suggestion agent = %q, want security", s.Agent)
				}
			}
		})
	}
}

func TestInfiniteLoops(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantCount int
	}{
		{
			name: "while True without exit",
			code: `async def poll():
    while True:
        await check()
`,
			wantCount: 1,
		},
		{
			name: "while True with break",
			code: `async def poll():
    while True:
        if done():
            break
`,
			wantCount: 0,
		},
		{
			name: "while True with return",
			code: `async def poll():
    while True:
        if done():
            return 1
`,
			wantCount: 0,
		},
		{
			name: "while True with task cancel",
			code: `async def poll(task):
    while True:
        task.cancel()
`,
			wantCount: 0,
		},
		{
			name: "bounded while is fine",
			code: `def count(n):
    while n > 0:
        n -= 1
`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InfiniteLoops(context.Background(), tt.code)
			if len(got) != tt.wantCount {
				t.Fatalf("InfiniteLoops() returned %d suggestions, want %d: %+v", len(got), tt.wantCount, got)
			}
			if tt.wantCount == 1 && got[0].Confidence != 0.95 {
				t.Errorf("infinite loop confidence = %v, want 0.95", got[0].Confidence)
			}
		})
	}
}
