package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/llm"
)

// Agent - один анализатор из фиксированной пятерки. Никогда не возвращает
// ошибку наружу: любой внутренний сбой превращается в AgentResult с пустыми
// suggestions и заполненным Error.
type Agent interface {
	Name() string
	Analyze(ctx context.Context, code, language string) domain.AgentResult
}

// scanFunc - детерминированный прескан (tree-sitter), работает только для python.
type scanFunc func(ctx context.Context, code string) []domain.Suggestion

// llmAgent - общий каркас: опциональный прескан + генеративный проход.
// Severity генеративных находок зажимается потолком maxSeverity, чтобы
// LLM не перебивал детерминированные severity=5.
type llmAgent struct {
	name        domain.AgentName
	idPrefix    string
	system      string
	maxSeverity int
	defSeverity int
	defConf     float64
	scans       []scanFunc
	prompt      func(code, language string) string
	llm         llm.Client
	logger      *zap.Logger
}

func (a *llmAgent) Name() string { return a.name.String() }

func (a *llmAgent) Analyze(ctx context.Context, code, language string) domain.AgentResult {
	start := time.Now()

	var suggestions []domain.Suggestion
	if strings.ToLower(language) == "python" {
		for _, scan := range a.scans {
			suggestions = append(suggestions, scan(ctx, code)...)
		}
	}

	content, err := a.llm.CompleteWithSystem(ctx, a.system, a.prompt(code, language))
	if err != nil {
		a.logger.Warn("llm pass failed",
			zap.String("agent", a.name.String()),
			zap.Error(err),
		)
		// скан-находки остаются валидными и без LLM
		if len(suggestions) == 0 {
			errStr := err.Error()
			if errors.Is(err, context.DeadlineExceeded) {
				errStr = "timeout"
			}
			return a.result(nil, start, errStr)
		}
		return a.result(suggestions, start, "")
	}

	parsed, err := a.parseSuggestions(content)
	if err != nil {
		a.logger.Warn("llm returned unparseable output",
			zap.String("agent", a.name.String()),
			zap.Error(err),
		)
		if len(suggestions) == 0 {
			return a.result(nil, start, err.Error())
		}
		return a.result(suggestions, start, "")
	}

	return a.result(append(suggestions, parsed...), start, "")
}

func (a *llmAgent) result(suggestions []domain.Suggestion, start time.Time, errStr string) domain.AgentResult {
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	return domain.AgentResult{
		Agent:       a.name.String(),
		Suggestions: suggestions,
		TookMs:      time.Since(start).Milliseconds(),
		Error:       errStr,
	}
}

// rawSuggestion - то, что обещает вернуть LLM. Указатели, чтобы отличить
// отсутствующее поле от нулевого.
type rawSuggestion struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Severity   *int     `json:"severity"`
	Confidence *float64 `json:"confidence"`
}

type rawResponse struct {
	Suggestions []rawSuggestion `json:"suggestions"`
}

func (a *llmAgent) parseSuggestions(content string) ([]domain.Suggestion, error) {
	var resp rawResponse
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal llm response: %w", err)
	}

	suggestions := make([]domain.Suggestion, 0, len(resp.Suggestions))
	for _, raw := range resp.Suggestions {
		if strings.TrimSpace(raw.Message) == "" {
			continue
		}

		sev := a.defSeverity
		if raw.Severity != nil {
			sev = *raw.Severity
		}
		sev = clampSeverity(sev, a.maxSeverity)

		conf := a.defConf
		if raw.Confidence != nil {
			conf = *raw.Confidence
		}
		if conf < 0 {
			conf = 0
		}
		if conf > 1 {
			conf = 1
		}

		typ := raw.Type
		if typ == "" {
			typ = a.name.String()
		}

		suggestions = append(suggestions, domain.Suggestion{
			ID:         newID(a.idPrefix),
			Agent:      a.name.String(),
			Type:       typ,
			Message:    raw.Message,
			Severity:   sev,
			Confidence: conf,
		})
	}

	return suggestions, nil
}

func clampSeverity(sev, max int) int {
	if sev > max {
		return max
	}
	if sev < 1 {
		return 1
	}
	return sev
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
