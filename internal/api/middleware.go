package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxAPIKey       = "api_key"
)

// RequestID берет идентификатор из заголовка (его может поставить балансер)
// или генерирует свой. Кладет в контекст и возвращает в ответе.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxRequestID, rid)
		c.Header(headerRequestID, rid)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// Auth проверяет API-ключ: Authorization ("Bearer <key>" или просто "<key>"),
// затем query-параметр api_key. Пустой набор ключей = dev-режим, все проходят
// под ключом "dev".
func (s *Server) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(s.apiKeys) == 0 {
			c.Set(ctxAPIKey, "dev")
			c.Next()
			return
		}

		key := c.GetHeader("Authorization")
		key = strings.TrimPrefix(key, "Bearer ")
		if key == "" {
			key = c.Query("api_key")
		}

		if key == "" {
			c.Header("WWW-Authenticate", "Bearer")
			s.errorJSON(c, http.StatusUnauthorized, "unauthorized", "missing API key")
			c.Abort()
			return
		}
		if !s.apiKeys[key] {
			s.logger.Warn("invalid api key attempt", zap.String("prefix", keyPrefix(key)))
			s.errorJSON(c, http.StatusForbidden, "forbidden", "invalid API key")
			c.Abort()
			return
		}

		c.Set(ctxAPIKey, key)
		c.Next()
	}
}

// RateLimit считает запросы по API-ключу. Отказ несет Retry-After в секундах.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ctxAPIKey)
		res := s.limiter.Check(c.Request.Context(), key)
		if !res.Allowed {
			if s.metrics != nil {
				s.metrics.RecordRateLimitHit()
			}
			c.Header("Retry-After", strconv.Itoa(res.RetryAfter))
			s.errorJSON(c, http.StatusTooManyRequests, "rate_limited",
				fmt.Sprintf("rate limit exceeded, try again in %ds", res.RetryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Observe пишет метрики запроса: счетчик по маршруту и статусу, латентность,
// in-flight gauge.
func (s *Server) Observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.metrics == nil {
			c.Next()
			return
		}

		start := time.Now()
		s.metrics.IncRequestsInFlight()
		c.Next()
		s.metrics.DecRequestsInFlight()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordRequest(route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func keyPrefix(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}
