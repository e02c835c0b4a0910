package metrics

import (
	"time"

	"caseflow-hq/polaris/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Suggestion outcome labels.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
)

// RAG outcome labels.
const (
	RAGEnhanced = "enhanced"
	RAGDegraded = "degraded"
	RAGSkipped  = "skipped"
)

// Collector owns every Prometheus metric Polaris exposes and the registry
// they live in. Handlers record through it; the /metrics endpoint serves
// from its registry.
//
// All label values are drawn from closed sets (provider kinds, fixed
// status strings), so there is no cardinality guard in front of the
// metric vectors.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	suggestionMetrics *SuggestionMetrics
	providerMetrics   *ProviderMetrics
}

// NewCollector creates a metrics collector backed by registry. A nil
// registry gets a fresh private one, keeping test collectors isolated.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "polaris",
//		Subsystem: "suggest",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = config.DefaultDurationBuckets()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.suggestionMetrics = NewSuggestionMetrics(cfg, registry)
	c.providerMetrics = NewProviderMetrics(cfg, registry)

	return c
}

// RecordSuggestion records a completed suggestion request.
//
// status is StatusSuccess for a provider-generated reply and
// StatusFallback when the canned apology went out instead.
func (c *Collector) RecordSuggestion(provider, status string, duration time.Duration, retries int) {
	if !c.config.Enabled {
		return
	}
	c.suggestionMetrics.RecordSuggestion(provider, status, duration, retries)
}

// RecordRAG records the retrieval outcome of one suggestion request:
// RAGEnhanced when knowledge-base context made it into the prompt,
// RAGDegraded when enhancement was attempted but the raw transcript was
// sent, RAGSkipped when retrieval was never attempted.
func (c *Collector) RecordRAG(outcome string) {
	if !c.config.Enabled {
		return
	}
	c.suggestionMetrics.RecordRAG(outcome)
}

// UpdateProviderHealth sets the health gauge for a provider kind.
// The gauge reads 1 when healthy, 0 when unhealthy.
func (c *Collector) UpdateProviderHealth(kind string, healthy bool) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.UpdateHealth(kind, healthy)
}

// RecordProviderError records a categorized provider failure.
func (c *Collector) RecordProviderError(kind, errorType string) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordError(kind, errorType)
}

// RecordProviderSwitch records a runtime switch of the active provider.
func (c *Collector) RecordProviderSwitch(kind string) {
	if !c.config.Enabled {
		return
	}
	c.providerMetrics.RecordSwitch(kind)
}

// RecordAuditDrop records an audit record lost to a full recorder buffer.
func (c *Collector) RecordAuditDrop() {
	if !c.config.Enabled {
		return
	}
	c.suggestionMetrics.RecordAuditDrop()
}

// Registry returns the Prometheus registry behind this collector, for
// mounting the scrape endpoint:
//
//	http.Handle("/metrics", collector.Handler())
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
