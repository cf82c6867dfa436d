package merge

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

// Result - сведенный выход всех агентов: дедуплицированные и отранжированные
// suggestions плюс веса, по которым считался score.
type Result struct {
	Suggestions  []domain.Suggestion
	Weights      map[string]float64
	AgentResults []domain.AgentResult
}

// DefaultWeight применяется для агента, отсутствующего в карте весов.
const DefaultWeight = 1.0

// agentPriority разруливает ничью при дедупликации: кто "владеет" темой,
// тот и оставляет свою находку. Minimalism выше security, потому что его
// детерминированные находки формулируются точнее.
var agentPriority = map[string]int{
	"minimalism": 5,
	"security":   4,
	"naming":     3,
	"docstring":  2,
	"style":      1,
}

var (
	lineRefRe = regexp.MustCompile(`lines?\s*\d+(-\d+)?`)
	punctRe   = regexp.MustCompile(`[^\w\s]`)
	wsRe      = regexp.MustCompile(`\s+`)
)

// Merge сводит результаты агентов: считает score каждой находки через вес
// агента, схлопывает дубли по канонизированному сообщению и сортирует по
// severity, затем score. Вход не мутируется.
func Merge(results []domain.AgentResult, weights map[string]float64) Result {
	merged := map[string]domain.Suggestion{}
	order := []string{}

	for _, ar := range results {
		w := weightFor(weights, ar.Agent)
		for _, s := range ar.Suggestions {
			s.Score = score(s.Severity, s.Confidence, w)

			key := dedupKey(s)
			prev, seen := merged[key]
			if !seen {
				merged[key] = s
				order = append(order, key)
				continue
			}
			if isBetter(s, prev) {
				merged[key] = s
			}
		}
	}

	suggestions := make([]domain.Suggestion, 0, len(order))
	for _, key := range order {
		suggestions = append(suggestions, merged[key])
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Severity != suggestions[j].Severity {
			return suggestions[i].Severity > suggestions[j].Severity
		}
		return suggestions[i].Score > suggestions[j].Score
	})

	return Result{
		Suggestions:  suggestions,
		Weights:      resolvedWeights(weights),
		AgentResults: results,
	}
}

// score = severity/5 * confidence * weight, округленный до 4 знаков.
// Максимум ровно 1.0 при весе 1.0.
func score(severity int, confidence, weight float64) float64 {
	raw := float64(severity) / 5.0 * confidence * weight
	return math.Round(raw*10000) / 10000
}

func weightFor(weights map[string]float64, agent string) float64 {
	if w, ok := weights[agent]; ok {
		return w
	}
	return DefaultWeight
}

func resolvedWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(domain.AllAgents))
	for _, a := range domain.AllAgents {
		out[a.String()] = weightFor(weights, a.String())
	}
	return out
}

// dedupKey канонизирует находку: нормализованный текст сообщения, а для
// типовых тем - фиксированное ведро, чтобы пять агентов, жалующихся на одно
// и то же разными словами, схлопывались в одну запись.
func dedupKey(s domain.Suggestion) string {
	msg := normalizeMessage(s.Message)

	if containsAny(msg, "duplicate", "identical", "twice", "same arguments", "called twice") {
		return "duplicate_operation"
	}
	if strings.Contains(msg, "unused") && strings.Contains(msg, "import") {
		return "unused_import"
	}
	if strings.Contains(msg, "unused") && strings.Contains(msg, "variable") {
		return "unused_variable"
	}
	if strings.Contains(msg, "docstring") && (strings.Contains(msg, "missing") || strings.Contains(msg, "no docstring")) {
		return "missing_docstring"
	}

	return msg
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// normalizeMessage: нижний регистр, без ссылок на строки, без пунктуации,
// схлопнутые пробелы. "Lines 3-5" и "line 7" дают один и тот же ключ.
func normalizeMessage(msg string) string {
	msg = strings.ToLower(msg)
	msg = lineRefRe.ReplaceAllString(msg, "")
	msg = punctRe.ReplaceAllString(msg, "")
	msg = wsRe.ReplaceAllString(msg, " ")
	return strings.TrimSpace(msg)
}

// isBetter выбирает победителя дубля: выше severity, затем выше confidence,
// затем приоритет агента.
func isBetter(a, b domain.Suggestion) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return agentPriority[a.Agent] > agentPriority[b.Agent]
}
