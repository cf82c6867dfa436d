package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.handleStart(ctx, msg)
		case "help":
			h.handleHelp(ctx, msg)
		case "review":
			h.handleReview(ctx, msg)
		case "weights":
			h.handleWeights(ctx, msg)
		case "feedback":
			h.handleFeedback(ctx, msg)
		default:
			h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
		}
		return
	}

	// сообщение без команды считаем кодом на ревью
	h.handleReview(ctx, msg)
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.Send(msg.Chat.ID, "Привет! Пришлите код - пять агентов разберут его на замечания.\n\nИспользуйте /help для справки.")
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	helpText := `<b>Доступные команды:</b>

/review [язык] код - Проанализировать код
/weights - Текущие веса агентов
/feedback ID up|down [1-5] - Оценить замечание
/help - Показать эту справку

<b>Агенты:</b>
• style - форматирование и отступы
• naming - имена переменных и функций
• minimalism - дубли и лишний код
• docstring - документация
• security - уязвимости

<b>Как использовать:</b>
Просто отправьте код сообщением (python по умолчанию) или укажите язык:
/review go
func main() { ... }

Ваши оценки через /feedback двигают веса агентов: полезные агенты получают больше влияния.`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleReview(ctx context.Context, msg *tgbotapi.Message) {
	limit := h.bot.rateLimiter.Check(ctx, fmt.Sprintf("tg:%d", msg.From.ID))
	if !limit.Allowed {
		h.bot.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", msg.From.ID),
			zap.Int("retry_after", limit.RetryAfter),
		)
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Слишком много запросов. Подождите %d сек.", limit.RetryAfter))
		return
	}

	req := ParseReviewCommand(msg.Text)
	if strings.TrimSpace(req.Code) == "" {
		h.bot.Send(msg.Chat.ID, "Пришлите код для анализа: /review [язык] код")
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	requestID := fmt.Sprintf("tg-%d-%d", msg.Chat.ID, msg.MessageID)
	result := h.bot.analyzer.Analyze(ctx, req.Code, req.Language, "normal", requestID)

	h.bot.logger.Info("review done",
		zap.Int64("user_id", msg.From.ID),
		zap.String("analysis_id", result.AnalysisID),
		zap.Bool("from_cache", result.FromCache),
		zap.Int("suggestions", len(result.Suggestions)),
	)

	formatted := FormatAnalysisResult(result)
	for _, m := range SplitMessage(formatted, 4096) { // лимит телеграма
		if err := h.bot.Send(msg.Chat.ID, m); err != nil {
			h.bot.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (h *Handler) handleWeights(ctx context.Context, msg *tgbotapi.Message) {
	w := h.bot.weightStore.Get(ctx, weights.ScopeGlobal)
	h.bot.Send(msg.Chat.ID, FormatWeights(w))
}

func (h *Handler) handleFeedback(ctx context.Context, msg *tgbotapi.Message) {
	cmd, ok := ParseFeedbackCommand(msg.CommandArguments())
	if !ok {
		h.bot.Send(msg.Chat.ID, "Использование: /feedback ID up|down [1-5]\nПример: /feedback sec-1a2b3c4d down 4")
		return
	}

	err := h.bot.feedbackSvc.Enqueue(ctx, domain.Feedback{
		SuggestionID: cmd.SuggestionID,
		Agent:        cmd.Agent,
		Accepted:     cmd.Accepted,
		Rating:       cmd.Rating,
	})
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, "Спасибо, оценка учтена.")
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownAgent):
		return "Неизвестный агент в идентификаторе замечания."
	case errors.Is(err, domain.ErrInvalidRating):
		return "Рейтинг должен быть от 1 до 5."
	case errors.Is(err, domain.ErrQueueUnavailable):
		return "Очередь недоступна, попробуйте позже."
	default:
		return "Произошла ошибка. Попробуйте позже."
	}
}
