// Package metrics provides Prometheus metrics collection for Polaris.
//
// # Overview
//
// The metrics package covers the suggestion pipeline (request count,
// latency, retries, retrieval outcomes) and the upstream AI providers
// (health gauge, error counters, runtime switches). Everything hangs off
// a single Collector with its own registry, so tests and embedders never
// touch global Prometheus state.
//
// # Usage
//
//	collector := metrics.NewCollector(cfg, nil)
//
//	collector.RecordSuggestion("flowise", metrics.StatusSuccess, 1200*time.Millisecond, 0)
//	collector.RecordRAG(metrics.RAGEnhanced)
//	collector.UpdateProviderHealth("flowise", true)
//
//	mux.Handle(cfg.Path, collector.Handler())
//
// # Prometheus Endpoint
//
// Metrics are exposed in the standard exposition format:
//
//	# HELP polaris_suggest_suggestions_total Total number of suggestion requests completed
//	# TYPE polaris_suggest_suggestions_total counter
//	polaris_suggest_suggestions_total{provider="flowise",status="success"} 1234
//
// Label values come from closed sets: provider kinds are the three
// supported upstreams and status/outcome strings are package constants.
// Nothing request-derived ever becomes a label, so the package carries no
// cardinality guard.
package metrics
