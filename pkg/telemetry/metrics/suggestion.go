package metrics

import (
	"time"

	"caseflow-hq/polaris/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SuggestionMetrics tracks the suggestion pipeline itself.
//
// Metrics:
//   - polaris_suggest_suggestions_total: completed requests by provider, status
//   - polaris_suggest_suggestion_duration_seconds: end-to-end latency histogram
//   - polaris_suggest_retries_total: generation retries by provider
//   - polaris_suggest_rag_total: retrieval outcomes
//   - polaris_suggest_audit_dropped_total: audit records lost to a full buffer
type SuggestionMetrics struct {
	suggestionsTotal *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	retriesTotal     *prometheus.CounterVec
	ragTotal         *prometheus.CounterVec
	auditDropped     prometheus.Counter
}

// NewSuggestionMetrics creates and registers suggestion metrics with the
// provided registry.
func NewSuggestionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SuggestionMetrics {
	sm := &SuggestionMetrics{
		suggestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suggestions_total",
				Help:      "Total number of suggestion requests completed",
			},
			[]string{"provider", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "suggestion_duration_seconds",
				Help:      "End-to-end suggestion latency in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"provider"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retries_total",
				Help:      "Total number of generation retries",
			},
			[]string{"provider"},
		),

		ragTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rag_total",
				Help:      "Retrieval outcomes per suggestion request",
			},
			[]string{"outcome"},
		),

		auditDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "audit_dropped_total",
				Help:      "Audit records dropped because the recorder buffer was full",
			},
		),
	}

	registry.MustRegister(
		sm.suggestionsTotal,
		sm.duration,
		sm.retriesTotal,
		sm.ragTotal,
		sm.auditDropped,
	)

	return sm
}

// RecordSuggestion records one completed suggestion request.
func (sm *SuggestionMetrics) RecordSuggestion(provider, status string, duration time.Duration, retries int) {
	if provider == "" {
		provider = "none"
	}
	sm.suggestionsTotal.WithLabelValues(provider, status).Inc()
	sm.duration.WithLabelValues(provider).Observe(duration.Seconds())
	if retries > 0 {
		sm.retriesTotal.WithLabelValues(provider).Add(float64(retries))
	}
}

// RecordRAG records a retrieval outcome.
func (sm *SuggestionMetrics) RecordRAG(outcome string) {
	sm.ragTotal.WithLabelValues(outcome).Inc()
}

// RecordAuditDrop counts a dropped audit record.
func (sm *SuggestionMetrics) RecordAuditDrop() {
	sm.auditDropped.Inc()
}
