package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDB       = errors.New("DATABASE_URL is required for postgres store")
	ErrMissingLLMKey   = errors.New("OPENAI_API_KEY is required for openai provider")
	ErrInvalidStore    = errors.New("invalid store type")
	ErrInvalidProvider = errors.New("invalid llm provider")
)

type Config struct {
	HTTP      HTTPConfig
	Telegram  TelegramConfig
	Database  DatabaseConfig
	Store     StoreConfig
	LLM       LLMConfig
	Log       LogConfig
	Dispatch  DispatchConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	API       APIConfig
}

type HTTPConfig struct {
	Addr string
}

type TelegramConfig struct {
	Token string
	Debug bool
}

type DatabaseConfig struct {
	URL string
}

// StoreConfig выбирает бекенд для весов/кеша/счетчиков/очереди.
// memory - всё в процессе, postgres - общие таблицы.
type StoreConfig struct {
	Type string // memory | postgres
}

type LLMConfig struct {
	Provider string // openai | mock
	OpenAI   OpenAIConfig
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type LogConfig struct {
	Level string
}

type DispatchConfig struct {
	AgentTimeout time.Duration // на одного агента
	TotalTimeout time.Duration // страховка на весь fan-out, строго больше AgentTimeout
}

type CacheConfig struct {
	TTL time.Duration
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

type APIConfig struct {
	Keys         string // csv, "dev" отключает авторизацию
	MaxCodeBytes int
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TELEGRAM_BOT_TOKEN"),
			Debug: getEnvOrDefault("TELEGRAM_DEBUG", "") == "true",
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Store: StoreConfig{
			Type: getEnvOrDefault("STORE_TYPE", "memory"),
		},
		LLM: LLMConfig{
			Provider: getEnvOrDefault("LLM_PROVIDER", "mock"),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o"),
				BaseURL: getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
				Timeout: time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SEC", 30)) * time.Second,
			},
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Dispatch: DispatchConfig{
			AgentTimeout: time.Duration(getEnvIntOrDefault("AGENT_TIMEOUT_SEC", 8)) * time.Second,
			TotalTimeout: time.Duration(getEnvIntOrDefault("DISPATCH_TIMEOUT_SEC", 12)) * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Duration(getEnvIntOrDefault("CACHE_TTL_SEC", 604800)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Limit:  getEnvIntOrDefault("RATE_LIMIT", 10),
			Window: time.Duration(getEnvIntOrDefault("RATE_WINDOW_SEC", 60)) * time.Second,
		},
		API: APIConfig{
			Keys:         getEnvOrDefault("API_KEYS", "dev"),
			MaxCodeBytes: getEnvIntOrDefault("MAX_CODE_BYTES", 100_000),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Type {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return ErrMissingDB
		}
	default:
		return ErrInvalidStore
	}

	switch c.LLM.Provider {
	case "mock":
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return ErrMissingLLMKey
		}
	default:
		return ErrInvalidProvider
	}

	return nil
}

// APIKeySet разбирает API_KEYS. Пустой набор = dev-режим, авторизация выключена.
func (c *Config) APIKeySet() map[string]bool {
	if c.API.Keys == "dev" {
		return nil
	}
	keys := make(map[string]bool)
	for _, k := range strings.Split(c.API.Keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys[k] = true
		}
	}
	return keys
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
