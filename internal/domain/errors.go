package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

var (
	ErrEmptyCode           = errors.New("code cannot be empty")
	ErrCodeTooLarge        = errors.New("code too large")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidDetailLevel  = errors.New("invalid detail level")
)

var (
	ErrEmptyMessage      = errors.New("suggestion message cannot be empty")
	ErrInvalidSeverity   = errors.New("severity must be between 1 and 5")
	ErrInvalidConfidence = errors.New("confidence must be between 0.0 and 1.0")
)

var (
	ErrUnknownAgent     = errors.New("unknown agent")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrQueueUnavailable = errors.New("feedback queue unavailable")
)
