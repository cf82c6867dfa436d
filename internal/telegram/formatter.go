package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/kitbuilder587/codecritic/internal/domain"
)

// FormatAnalysisResult собирает HTML-отчет по результату анализа:
// находки по убыванию важности, идентификаторы для /feedback, сводка агентов.
func FormatAnalysisResult(res *domain.AnalysisResult) string {
	var sb strings.Builder

	if res.FromCache {
		sb.WriteString("<i>Результат из кэша</i>\n\n")
	}

	if len(res.Suggestions) == 0 {
		sb.WriteString("Замечаний нет. Код выглядит хорошо.\n")
	} else {
		sb.WriteString(fmt.Sprintf("<b>Найдено замечаний: %d</b>\n\n", len(res.Suggestions)))
		for i, s := range res.Suggestions {
			sb.WriteString(fmt.Sprintf("%d. %s <b>[%s]</b> %s\n   <code>%s</code> score=%.2f\n\n",
				i+1,
				severityIcon(s.Severity),
				html.EscapeString(s.Agent),
				html.EscapeString(s.Message),
				html.EscapeString(s.ID),
				s.Score,
			))
		}
		sb.WriteString("Оценить: /feedback ID up|down [1-5]\n")
	}

	var failed []string
	for _, ar := range res.AgentResults {
		if ar.Error != "" {
			failed = append(failed, ar.Agent)
		}
	}
	if len(failed) > 0 {
		sb.WriteString(fmt.Sprintf("\n<i>Без ответа: %s</i>\n", strings.Join(failed, ", ")))
	}

	return sb.String()
}

// FormatWeights - текущие веса по убыванию влияния.
func FormatWeights(weights map[string]float64) string {
	agents := make([]string, 0, len(weights))
	for a := range weights {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool {
		if weights[agents[i]] != weights[agents[j]] {
			return weights[agents[i]] > weights[agents[j]]
		}
		return agents[i] < agents[j]
	})

	var sb strings.Builder
	sb.WriteString("<b>Веса агентов:</b>\n\n")
	for _, a := range agents {
		sb.WriteString(fmt.Sprintf("%s %s: %.3f\n", weightBar(weights[a]), a, weights[a]))
	}
	return sb.String()
}

func severityIcon(severity int) string {
	switch severity {
	case 5:
		return "🟥"
	case 3:
		return "🟧"
	case 2:
		return "🟨"
	default:
		return "⬜"
	}
}

// weightBar - грубая шкала [0.1, 2.0] в пять делений.
func weightBar(w float64) string {
	filled := int(w / 2.0 * 5)
	if filled < 1 {
		filled = 1
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", 5-filled)
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}

		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	// внутри тега - ищем конец
	if maxLen < len(text) && isInsideHTMLTag(text, maxLen) {
		for i := maxLen; i < len(text); i++ {
			if text[i] == '>' {
				for j := i + 1; j < len(text) && j < i+50; j++ {
					if text[j] == '\n' || text[j] == ' ' {
						return j + 1
					}
				}
				return i + 1
			}
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}
