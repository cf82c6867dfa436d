package config

import (
	"os"
	"testing"
	"time"
)

var knownEnvVars = []string{
	"HTTP_ADDR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_DEBUG", "DATABASE_URL",
	"STORE_TYPE", "LLM_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL",
	"OPENAI_BASE_URL", "LLM_TIMEOUT_SEC", "LOG_LEVEL", "AGENT_TIMEOUT_SEC",
	"DISPATCH_TIMEOUT_SEC", "CACHE_TTL_SEC", "RATE_LIMIT", "RATE_WINDOW_SEC",
	"API_KEYS", "MAX_CODE_BYTES",
}

func clearEnvVars() {
	for _, k := range knownEnvVars {
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr error
	}{
		{
			name:    "defaults are valid",
			envVars: map[string]string{},
			wantErr: nil,
		},
		{
			name: "postgres store without database url",
			envVars: map[string]string{
				"STORE_TYPE": "postgres",
			},
			wantErr: ErrMissingDB,
		},
		{
			name: "postgres store with database url",
			envVars: map[string]string{
				"STORE_TYPE":   "postgres",
				"DATABASE_URL": "postgres://localhost:5432/test",
			},
			wantErr: nil,
		},
		{
			name: "unknown store type",
			envVars: map[string]string{
				"STORE_TYPE": "redis",
			},
			wantErr: ErrInvalidStore,
		},
		{
			name: "openai provider without key",
			envVars: map[string]string{
				"LLM_PROVIDER": "openai",
			},
			wantErr: ErrMissingLLMKey,
		},
		{
			name: "openai provider with key",
			envVars: map[string]string{
				"LLM_PROVIDER":   "openai",
				"OPENAI_API_KEY": "sk-test",
			},
			wantErr: nil,
		},
		{
			name: "unknown llm provider",
			envVars: map[string]string{
				"LLM_PROVIDER": "claude",
			},
			wantErr: ErrInvalidProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}
			defer clearEnvVars()

			cfg, err := Load()

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error = %v", err)
				return
			}

			if cfg == nil {
				t.Error("Load() returned nil config")
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %v, want info", cfg.Log.Level)
	}
	if cfg.Store.Type != "memory" {
		t.Errorf("Store.Type = %v, want memory", cfg.Store.Type)
	}
	if cfg.Dispatch.AgentTimeout != 8*time.Second {
		t.Errorf("Dispatch.AgentTimeout = %v, want 8s", cfg.Dispatch.AgentTimeout)
	}
	if cfg.Dispatch.TotalTimeout != 12*time.Second {
		t.Errorf("Dispatch.TotalTimeout = %v, want 12s", cfg.Dispatch.TotalTimeout)
	}
	if cfg.Cache.TTL != 604800*time.Second {
		t.Errorf("Cache.TTL = %v, want 7 days", cfg.Cache.TTL)
	}
	if cfg.RateLimit.Limit != 10 {
		t.Errorf("RateLimit.Limit = %v, want 10", cfg.RateLimit.Limit)
	}
	if cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit.Window = %v, want 1m", cfg.RateLimit.Window)
	}
	if cfg.API.MaxCodeBytes != 100_000 {
		t.Errorf("API.MaxCodeBytes = %v, want 100000", cfg.API.MaxCodeBytes)
	}
}

func TestAPIKeySet(t *testing.T) {
	tests := []struct {
		name string
		keys string
		want map[string]bool
	}{
		{"dev mode returns nil", "dev", nil},
		{"single key", "abc123", map[string]bool{"abc123": true}},
		{"multiple keys with spaces", "k1, k2 ,k3", map[string]bool{"k1": true, "k2": true, "k3": true}},
		{"empty entries skipped", "k1,,k2", map[string]bool{"k1": true, "k2": true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{API: APIConfig{Keys: tt.keys}}
			got := cfg.APIKeySet()

			if tt.want == nil {
				if got != nil {
					t.Errorf("APIKeySet() = %v, want nil", got)
				}
				return
			}

			if len(got) != len(tt.want) {
				t.Fatalf("APIKeySet() = %v, want %v", got, tt.want)
			}
			for k := range tt.want {
				if !got[k] {
					t.Errorf("APIKeySet() missing key %q", k)
				}
			}
		})
	}
}
