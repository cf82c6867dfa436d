package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/agent"
	"github.com/kitbuilder587/codecritic/internal/cache"
	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/fingerprint"
	"github.com/kitbuilder587/codecritic/internal/merge"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

// Analyzer - весь пайплайн анализа: отпечаток, кэш, fan-out агентов,
// слияние, запись в кэш. Никогда не возвращает ошибку из-за инфраструктуры:
// кэш и веса fail-open, упавшие агенты дают пустые результаты.
type Analyzer struct {
	dispatcher *agent.Dispatcher
	cache      *cache.AnalysisCache
	weights    *weights.Store
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewAnalyzer(
	dispatcher *agent.Dispatcher,
	analysisCache *cache.AnalysisCache,
	weightStore *weights.Store,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		dispatcher: dispatcher,
		cache:      analysisCache,
		weights:    weightStore,
		metrics:    m,
		logger:     logger,
	}
}

// Analyze гоняет полный пайплайн. Идентификатор анализа свежий на каждый
// вызов, включая попадания в кэш: кэшируется содержимое, не идентичность
// запроса. Закешированные suggestions и веса отдаются как есть, даже если
// живые веса успели уйти - пересчет сломал бы детерминизм кэша.
func (a *Analyzer) Analyze(ctx context.Context, code, language, detail, requestID string) *domain.AnalysisResult {
	start := time.Now()

	fp := fingerprint.Fingerprint(code)
	analysisID := newAnalysisID()

	if cached := a.cache.Get(ctx, fp); cached != nil {
		a.logger.Info("cache hit",
			zap.String("fingerprint", fp[:8]),
			zap.String("request_id", requestID),
		)
		if a.metrics != nil {
			a.metrics.RecordCacheHit()
			a.metrics.RecordAnalysis(true, time.Since(start))
		}
		return &domain.AnalysisResult{
			AnalysisID:   analysisID,
			Fingerprint:  fp,
			FromCache:    true,
			Suggestions:  cached.Suggestions,
			AgentWeights: cached.AgentWeights,
			AgentResults: cached.AgentResults,
			RequestID:    requestID,
		}
	}

	a.logger.Info("cache miss, running agents",
		zap.String("fingerprint", fp[:8]),
		zap.String("language", language),
		zap.String("detail", detail),
		zap.String("request_id", requestID),
	)
	if a.metrics != nil {
		a.metrics.RecordCacheMiss()
	}

	agentResults := a.dispatcher.Dispatch(ctx, code, language)
	w := a.weights.Get(ctx, weights.ScopeGlobal)
	merged := merge.Merge(agentResults, w)

	if a.metrics != nil {
		for _, ar := range agentResults {
			a.metrics.RecordAgentRun(ar.Agent, ar.TookMs, ar.Error)
		}
		for name, v := range merged.Weights {
			a.metrics.SetAgentWeight(name, v)
		}
	}

	result := &domain.AnalysisResult{
		AnalysisID:   analysisID,
		Fingerprint:  fp,
		FromCache:    false,
		Suggestions:  merged.Suggestions,
		AgentWeights: merged.Weights,
		AgentResults: merged.AgentResults,
		RequestID:    requestID,
	}

	// best-effort: неудачная запись не мешает отдать результат
	if a.cache.Set(ctx, fp, result) {
		a.logger.Info("analysis cached",
			zap.String("fingerprint", fp[:8]),
			zap.Int("suggestions", len(result.Suggestions)),
		)
	}

	if a.metrics != nil {
		a.metrics.RecordAnalysis(false, time.Since(start))
	}
	return result
}

func newAnalysisID() string {
	return fmt.Sprintf("an-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
