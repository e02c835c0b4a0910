package metrics

import (
	"caseflow-hq/polaris/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks upstream AI provider health and failures.
//
// Metrics:
//   - polaris_suggest_provider_health: health gauge (1=healthy, 0=unhealthy)
//   - polaris_suggest_provider_errors_total: provider errors by type
//   - polaris_suggest_provider_switches_total: runtime provider switches
type ProviderMetrics struct {
	health   *prometheus.GaugeVec
	errors   *prometheus.CounterVec
	switches *prometheus.CounterVec
}

// NewProviderMetrics creates and registers provider metrics with the
// provided registry.
func NewProviderMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_health",
				Help:      "Provider health status (1=healthy, 0=unhealthy)",
			},
			[]string{"provider"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of provider errors by type",
			},
			[]string{"provider", "error_type"},
		),

		switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_switches_total",
				Help:      "Total number of runtime provider switches",
			},
			[]string{"provider"},
		),
	}

	registry.MustRegister(
		pm.health,
		pm.errors,
		pm.switches,
	)

	return pm
}

// UpdateHealth sets the health gauge for a provider kind.
func (pm *ProviderMetrics) UpdateHealth(kind string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	pm.health.WithLabelValues(kind).Set(value)
}

// RecordError records a provider failure.
//
// Common error types:
//   - "network": transport failure or upstream 5xx/429
//   - "format": 2xx with an unusable body
//   - "config": variant construction rejected the configuration
func (pm *ProviderMetrics) RecordError(kind, errorType string) {
	pm.errors.WithLabelValues(kind, errorType).Inc()
}

// RecordSwitch records a successful switch to kind.
func (pm *ProviderMetrics) RecordSwitch(kind string) {
	pm.switches.WithLabelValues(kind).Inc()
}
