package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kitbuilder587/codecritic/internal/domain"
	"github.com/kitbuilder587/codecritic/internal/metrics"
	"github.com/kitbuilder587/codecritic/internal/ratelimit"
	"github.com/kitbuilder587/codecritic/internal/service"
	"github.com/kitbuilder587/codecritic/internal/weights"
)

// SupportedLanguages - закрытый список, сравнение без учета регистра.
var SupportedLanguages = map[string]bool{
	"python": true, "javascript": true, "typescript": true,
	"java": true, "go": true, "rust": true, "c": true, "cpp": true,
}

var validDetailLevels = map[string]bool{"fast": true, "normal": true, "deep": true}

const DefaultMaxCodeBytes = 100_000

// Server держит зависимости HTTP-слоя. Роуты и middleware - его методы.
type Server struct {
	analyzer *service.Analyzer
	feedback *service.FeedbackService
	weights  *weights.Store
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger

	apiKeys      map[string]bool
	maxCodeBytes int
	// ping бэкенда хранилища для /health; nil = памятный режим, проверка
	// помечается как skipped
	storePing func(ctx context.Context) error
}

type ServerConfig struct {
	APIKeys      map[string]bool
	MaxCodeBytes int
	StorePing    func(ctx context.Context) error
}

func NewServer(
	analyzer *service.Analyzer,
	feedback *service.FeedbackService,
	weightStore *weights.Store,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	cfg ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxCodeBytes <= 0 {
		cfg.MaxCodeBytes = DefaultMaxCodeBytes
	}
	return &Server{
		analyzer:     analyzer,
		feedback:     feedback,
		weights:      weightStore,
		limiter:      limiter,
		metrics:      m,
		logger:       logger,
		apiKeys:      cfg.APIKeys,
		maxCodeBytes: cfg.MaxCodeBytes,
		storePing:    cfg.StorePing,
	}
}

type analyzeRequest struct {
	Language    string `json:"language"`
	Code        string `json:"code"`
	DetailLevel string `json:"detail_level"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if req.DetailLevel == "" {
		req.DetailLevel = "normal"
	}

	if strings.TrimSpace(req.Code) == "" {
		s.errorJSON(c, http.StatusBadRequest, "bad_request", domain.ErrEmptyCode.Error())
		return
	}
	if size := len(req.Code); size > s.maxCodeBytes {
		s.errorJSON(c, http.StatusRequestEntityTooLarge, "payload_too_large",
			fmt.Sprintf("code too large: %d bytes, max %d", size, s.maxCodeBytes))
		return
	}
	if !SupportedLanguages[strings.ToLower(req.Language)] {
		s.errorJSON(c, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("unsupported language: %s. try: %s", req.Language, supportedLanguagesList()))
		return
	}
	if !validDetailLevels[req.DetailLevel] {
		s.errorJSON(c, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("invalid detail_level: %s. must be one of fast, normal, deep", req.DetailLevel))
		return
	}

	rid := requestID(c)
	s.logger.Info("analyze request",
		zap.String("language", req.Language),
		zap.Int("code_bytes", len(req.Code)),
		zap.String("request_id", rid),
	)

	result := s.analyzer.Analyze(c.Request.Context(), req.Code, req.Language, req.DetailLevel, rid)

	s.logger.Info("analyze done",
		zap.String("analysis_id", result.AnalysisID),
		zap.Bool("from_cache", result.FromCache),
		zap.Int("suggestions", len(result.Suggestions)),
	)
	c.JSON(http.StatusOK, result)
}

type feedbackRequest struct {
	AnalysisID   string `json:"analysis_id"`
	SuggestionID string `json:"suggestion_id"`
	Agent        string `json:"agent"`
	Accepted     bool   `json:"accepted"`
	UserRating   int    `json:"user_rating"`
}

type feedbackResponse struct {
	Status    string `json:"status"` // queued | error
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (s *Server) handleFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorJSON(c, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	rid := requestID(c)
	err := s.feedback.Enqueue(c.Request.Context(), domain.Feedback{
		AnalysisID:   req.AnalysisID,
		SuggestionID: req.SuggestionID,
		Agent:        req.Agent,
		Accepted:     req.Accepted,
		Rating:       req.UserRating,
	})

	switch err {
	case nil:
		c.JSON(http.StatusOK, feedbackResponse{
			Status:    "queued",
			Message:   "feedback received",
			RequestID: rid,
		})
	case domain.ErrUnknownAgent, domain.ErrInvalidRating:
		s.errorJSON(c, http.StatusBadRequest, "bad_request", err.Error())
	default:
		// очередь легла: отзыв потерян, но клиенту незачем ретраить до упора
		c.JSON(http.StatusOK, feedbackResponse{
			Status:    "error",
			Message:   "queue unavailable",
			RequestID: rid,
		})
	}
}

// handleWeights отдает текущие веса. Выше вес - больше влияния на итог.
func (s *Server) handleWeights(c *gin.Context) {
	c.JSON(http.StatusOK, s.weights.Get(c.Request.Context(), weights.ScopeGlobal))
}

func (s *Server) handleHealth(c *gin.Context) {
	storeStatus := "skipped"
	if s.storePing != nil {
		if err := s.storePing(c.Request.Context()); err != nil {
			storeStatus = fmt.Sprintf("error: %v", err)
		} else {
			storeStatus = "ok"
		}
	}

	status := "ok"
	if storeStatus != "ok" && storeStatus != "skipped" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     status,
		"store":      storeStatus,
		"request_id": requestID(c),
	})
}

func (s *Server) errorJSON(c *gin.Context, status int, errCode, detail string) {
	c.JSON(status, gin.H{
		"error":      errCode,
		"detail":     detail,
		"request_id": requestID(c),
	})
}

func supportedLanguagesList() string {
	langs := make([]string, 0, len(SupportedLanguages))
	for l := range SupportedLanguages {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return strings.Join(langs, ", ")
}
