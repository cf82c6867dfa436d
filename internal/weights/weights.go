package weights

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/repository"
)

const (
	DefaultWeight = 1.0
	MinWeight     = 0.1
	MaxWeight     = 2.0

	// ScopeGlobal - единственный используемый scope. Персонализация
	// по пользователям отложена, но схема хранения к ней готова.
	ScopeGlobal = "global"
)

// Store - веса агентов поверх репозитория. Чтение fail-open: любой сбой
// бэкенда дает дефолтную карту, анализ не падает из-за хранилища весов.
type Store struct {
	repo   repository.WeightRepository
	logger *zap.Logger
}

func NewStore(repo repository.WeightRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, logger: logger}
}

// Defaults - карта весов "все по 1.0".
func Defaults() map[string]float64 {
	m := make(map[string]float64, len(domain.AllAgents))
	for _, a := range domain.AllAgents {
		m[a.String()] = DefaultWeight
	}
	return m
}

// Get возвращает полную карту весов scope. Отсутствующая запись лениво
// создается: дефолты записываются в бэкенд при первом чтении. Ошибка бэкенда
// дает дефолты без записи; частичная запись дополняется дефолтами поагентно.
func (s *Store) Get(ctx context.Context, scope string) map[string]float64 {
	stored, err := s.repo.Get(ctx, scope)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("weight store read failed, using defaults",
				zap.String("scope", scope),
				zap.Error(err),
			)
			return Defaults()
		}

		m := Defaults()
		if perr := s.repo.Put(ctx, scope, m); perr != nil {
			s.logger.Warn("weight store init failed",
				zap.String("scope", scope),
				zap.Error(perr),
			)
		}
		return m
	}

	m := Defaults()
	for _, a := range domain.AllAgents {
		if v, ok := stored[a.String()]; ok {
			m[a.String()] = v
		}
	}
	return m
}

// Update прибавляет delta к весу агента, зажимает в [MinWeight, MaxWeight]
// и сохраняет карту целиком. Read-modify-write без транзакции: конкурентные
// апдейты могут потерять чужую дельту, воркер фидбека работает в один поток.
// Новое значение возвращается даже если запись не удалась.
func (s *Store) Update(ctx context.Context, scope, agent string, delta float64) float64 {
	m := s.Get(ctx, scope)

	old, ok := m[agent]
	if !ok {
		old = DefaultWeight
	}
	next := clamp(old + delta)
	m[agent] = next

	if err := s.repo.Put(ctx, scope, m); err != nil {
		s.logger.Error("weight store write failed",
			zap.String("scope", scope),
			zap.String("agent", agent),
			zap.Error(err),
		)
		return next
	}

	s.logger.Info("agent weight updated",
		zap.String("scope", scope),
		zap.String("agent", agent),
		zap.Float64("old", old),
		zap.Float64("new", next),
		zap.Float64("delta", delta),
	)
	return next
}

// Reset возвращает все веса scope к дефолтам. Сбой записи не мешает вернуть
// дефолтную карту.
func (s *Store) Reset(ctx context.Context, scope string) map[string]float64 {
	m := Defaults()
	if err := s.repo.Put(ctx, scope, m); err != nil {
		s.logger.Warn("weight store reset failed",
			zap.String("scope", scope),
			zap.Error(err),
		)
	}
	return m
}

func clamp(v float64) float64 {
	if v < MinWeight {
		return MinWeight
	}
	if v > MaxWeight {
		return MaxWeight
	}
	return v
}
