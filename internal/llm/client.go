package llm

import (
	"context"
	"errors"
)

var (
	ErrAuthFailed    = errors.New("authentication failed")
	ErrRequestFailed = errors.New("request failed")
	ErrEmptyResponse = errors.New("empty response")
	ErrRateLimit     = errors.New("rate limit exceeded")
)

// Client - общий интерфейс для всех агентов. Ответ ожидается в JSON
// (провайдер запрашивает response_format=json_object).
type Client interface {
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}
