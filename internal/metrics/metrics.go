package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram

	AgentDuration *prometheus.HistogramVec
	AgentErrors   *prometheus.CounterVec

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	RateLimitHitsTotal prometheus.Counter

	FeedbackQueuedTotal    prometheus.Counter
	FeedbackProcessedTotal *prometheus.CounterVec

	AgentWeight *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codecritic_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"route", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codecritic_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 15},
			},
			[]string{"route"},
		),
		RequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "codecritic_requests_in_flight",
				Help: "Number of requests currently being processed",
			},
		),

		AnalysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codecritic_analyses_total",
				Help: "Total number of analyses by outcome",
			},
			[]string{"outcome"}, // fresh | cached
		),
		AnalysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "codecritic_analysis_duration_seconds",
				Help:    "End-to-end analysis pipeline duration in seconds",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 8, 12, 15},
			},
		),

		AgentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codecritic_agent_duration_seconds",
				Help:    "Per-agent analysis duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 4, 8, 12},
			},
			[]string{"agent"},
		),
		AgentErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codecritic_agent_errors_total",
				Help: "Total number of failed agent runs",
			},
			[]string{"agent", "reason"}, // reason: timeout | error
		),

		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codecritic_llm_requests_total",
				Help: "Total number of LLM API requests",
			},
			[]string{"provider", "status"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "codecritic_llm_request_duration_seconds",
				Help:    "LLM request duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 8, 12, 30},
			},
			[]string{"provider"},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "codecritic_cache_hits_total",
				Help: "Total number of analysis cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "codecritic_cache_misses_total",
				Help: "Total number of analysis cache misses",
			},
		),

		RateLimitHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "codecritic_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
		),

		FeedbackQueuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "codecritic_feedback_queued_total",
				Help: "Total number of feedback events enqueued",
			},
		),
		FeedbackProcessedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codecritic_feedback_processed_total",
				Help: "Total number of feedback events processed by the worker",
			},
			[]string{"status"}, // ok | invalid | error
		),

		AgentWeight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "codecritic_agent_weight",
				Help: "Current RL weight per agent",
			},
			[]string{"agent"},
		),
	}

	return m
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordAnalysis(fromCache bool, duration time.Duration) {
	outcome := "fresh"
	if fromCache {
		outcome = "cached"
	}
	m.AnalysesTotal.WithLabelValues(outcome).Inc()
	m.AnalysisDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordAgentRun(agent string, tookMs int64, errStr string) {
	m.AgentDuration.WithLabelValues(agent).Observe(float64(tookMs) / 1000)
	if errStr == "timeout" {
		m.AgentErrors.WithLabelValues(agent, "timeout").Inc()
	} else if errStr != "" {
		m.AgentErrors.WithLabelValues(agent, "error").Inc()
	}
}

func (m *Metrics) RecordLLMRequest(provider, status string, duration time.Duration) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHitsTotal.Inc()
}

func (m *Metrics) RecordFeedbackQueued() {
	m.FeedbackQueuedTotal.Inc()
}

func (m *Metrics) RecordFeedbackProcessed(status string) {
	m.FeedbackProcessedTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetAgentWeight(agent string, weight float64) {
	m.AgentWeight.WithLabelValues(agent).Set(weight)
}

func (m *Metrics) IncRequestsInFlight() {
	m.RequestsInFlight.Inc()
}

func (m *Metrics) DecRequestsInFlight() {
	m.RequestsInFlight.Dec()
}
