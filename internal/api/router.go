package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kitbuilder587/codecritic/internal/metrics"
)

// NewRouter собирает gin-роутер: /api/v1 с авторизацией и лимитом на
// дорогих ручках, health и metrics без них.
func (s *Server) NewRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), s.Observe())

	v1 := r.Group("/api/v1")
	{
		guarded := v1.Group("", s.Auth(), s.RateLimit())
		guarded.POST("/analyze", s.handleAnalyze)
		guarded.POST("/feedback", s.handleFeedback)

		v1.GET("/agents/weights", s.handleWeights)
		v1.GET("/health", s.handleHealth)
		v1.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return r
}
