package telegram

import (
	"strings"
)

// ReviewRequest - разобранная команда /review или обычное сообщение с кодом.
type ReviewRequest struct {
	Language string
	Code     string
}

var knownLanguages = map[string]bool{
	"python": true, "javascript": true, "typescript": true,
	"java": true, "go": true, "rust": true, "c": true, "cpp": true,
}

// префикс идентификатора подсказки -> имя агента
var prefixToAgent = map[string]string{
	"sty": "style",
	"nam": "naming",
	"min": "minimalism",
	"doc": "docstring",
	"sec": "security",
}

// ParseReviewCommand разбирает "/review [язык]\nкод" либо просто текст с
// кодом. Язык опционален и стоит первой строкой после команды; по умолчанию
// python. Тройные кавычки markdown-блока срезаются.
func ParseReviewCommand(text string) ReviewRequest {
	text = strings.TrimSpace(text)
	language := "python"

	if strings.HasPrefix(text, "/review") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "/review"))

		// первый токен может быть языком
		if idx := strings.IndexAny(text, " \n"); idx > 0 {
			first := strings.ToLower(text[:idx])
			if knownLanguages[first] {
				language = first
				text = strings.TrimSpace(text[idx:])
			}
		}
	}

	return ReviewRequest{Language: language, Code: stripCodeFence(text)}
}

// FeedbackCommand - разобранная команда /feedback.
type FeedbackCommand struct {
	SuggestionID string
	Agent        string
	Accepted     bool
	Rating       int
}

// ParseFeedbackCommand разбирает "/feedback <suggestion_id> <up|down> [rating]".
// Агент восстанавливается из префикса идентификатора. Рейтинг по умолчанию 5:
// голос без уточнения считаем уверенным.
func ParseFeedbackCommand(args string) (FeedbackCommand, bool) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return FeedbackCommand{}, false
	}

	id := fields[0]
	agent, ok := agentFromSuggestionID(id)
	if !ok {
		return FeedbackCommand{}, false
	}

	var accepted bool
	switch strings.ToLower(fields[1]) {
	case "up", "+", "accept":
		accepted = true
	case "down", "-", "reject":
		accepted = false
	default:
		return FeedbackCommand{}, false
	}

	rating := 5
	if len(fields) >= 3 {
		switch fields[2] {
		case "1", "2", "3", "4", "5":
			rating = int(fields[2][0] - '0')
		default:
			return FeedbackCommand{}, false
		}
	}

	return FeedbackCommand{
		SuggestionID: id,
		Agent:        agent,
		Accepted:     accepted,
		Rating:       rating,
	}, true
}

func agentFromSuggestionID(id string) (string, bool) {
	idx := strings.Index(id, "-")
	if idx <= 0 {
		return "", false
	}
	agent, ok := prefixToAgent[id[:idx]]
	return agent, ok
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// ```python\n... - метка языка на первой строке
	if idx := strings.Index(text, "\n"); idx >= 0 {
		text = text[idx+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}
