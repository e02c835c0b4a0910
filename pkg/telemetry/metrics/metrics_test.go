package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caseflow-hq/polaris/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		Subsystem:       "metrics",
		DurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.registry != registry {
		t.Error("Collector registry not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Registry() returned a different registry")
	}
}

func TestCollector_NewCollectorDefaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	collector := NewCollector(cfg, nil)

	if collector.registry == nil {
		t.Fatal("Expected a private registry for nil input")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want default", cfg.Namespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("duration buckets were not defaulted")
	}
}

func TestCollector_RecordSuggestion(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	tests := []struct {
		name     string
		provider string
		status   string
		duration time.Duration
		retries  int
	}{
		{
			name:     "clean success",
			provider: "flowise",
			status:   StatusSuccess,
			duration: 1200 * time.Millisecond,
			retries:  0,
		},
		{
			name:     "success after retries",
			provider: "openrouter",
			status:   StatusSuccess,
			duration: 4 * time.Second,
			retries:  2,
		},
		{
			name:     "fallback",
			provider: "azure",
			status:   StatusFallback,
			duration: 9 * time.Second,
			retries:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.RecordSuggestion(tt.provider, tt.status, tt.duration, tt.retries)

			count := testutil.ToFloat64(collector.suggestionMetrics.suggestionsTotal.WithLabelValues(tt.provider, tt.status))
			if count < 1 {
				t.Errorf("Expected suggestion counter >= 1, got %f", count)
			}
			if tt.retries > 0 {
				retries := testutil.ToFloat64(collector.suggestionMetrics.retriesTotal.WithLabelValues(tt.provider))
				if retries < float64(tt.retries) {
					t.Errorf("Expected retries >= %d, got %f", tt.retries, retries)
				}
			}
		})
	}
}

func TestCollector_RecordSuggestionEmptyProvider(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	// Settings resolution can fail before any kind is attempted; the
	// result then carries no provider.
	collector.RecordSuggestion("", StatusFallback, time.Second, 0)

	count := testutil.ToFloat64(collector.suggestionMetrics.suggestionsTotal.WithLabelValues("none", StatusFallback))
	if count != 1 {
		t.Errorf("Expected empty provider to land under \"none\", got %f", count)
	}
}

func TestCollector_RecordRAG(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	for _, outcome := range []string{RAGEnhanced, RAGDegraded, RAGSkipped} {
		collector.RecordRAG(outcome)
		count := testutil.ToFloat64(collector.suggestionMetrics.ragTotal.WithLabelValues(outcome))
		if count != 1 {
			t.Errorf("Expected rag counter for %q = 1, got %f", outcome, count)
		}
	}
}

func TestCollector_ProviderMetrics(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	t.Run("update health", func(t *testing.T) {
		collector.UpdateProviderHealth("flowise", true)
		health := testutil.ToFloat64(collector.providerMetrics.health.WithLabelValues("flowise"))
		if health != 1.0 {
			t.Errorf("Expected health=1.0, got %f", health)
		}

		collector.UpdateProviderHealth("flowise", false)
		health = testutil.ToFloat64(collector.providerMetrics.health.WithLabelValues("flowise"))
		if health != 0.0 {
			t.Errorf("Expected health=0.0, got %f", health)
		}
	})

	t.Run("record error", func(t *testing.T) {
		collector.RecordProviderError("openrouter", "network")
		count := testutil.ToFloat64(collector.providerMetrics.errors.WithLabelValues("openrouter", "network"))
		if count < 1 {
			t.Errorf("Expected error count >= 1, got %f", count)
		}
	})

	t.Run("record switch", func(t *testing.T) {
		collector.RecordProviderSwitch("azure")
		count := testutil.ToFloat64(collector.providerMetrics.switches.WithLabelValues("azure"))
		if count < 1 {
			t.Errorf("Expected switch count >= 1, got %f", count)
		}
	})
}

func TestCollector_RecordAuditDrop(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordAuditDrop()
	collector.RecordAuditDrop()

	count := testutil.ToFloat64(collector.suggestionMetrics.auditDropped)
	if count != 2 {
		t.Errorf("Expected 2 dropped records, got %f", count)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordSuggestion("flowise", StatusSuccess, time.Second, 1)
	collector.RecordRAG(RAGEnhanced)
	collector.UpdateProviderHealth("flowise", true)
	collector.RecordProviderSwitch("azure")
	collector.RecordAuditDrop()

	count := testutil.ToFloat64(collector.suggestionMetrics.suggestionsTotal.WithLabelValues("flowise", StatusSuccess))
	if count != 0 {
		t.Errorf("Disabled collector still recorded: %f", count)
	}
}

func TestCollector_Handler(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordSuggestion("flowise", StatusSuccess, 900*time.Millisecond, 0)

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scrape status = %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading exposition: %v", err)
	}
	if !strings.Contains(string(body), "test_metrics_suggestions_total") {
		t.Errorf("exposition missing suggestion counter:\n%s", body)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	cfg := testConfig()
	collector := NewCollector(cfg, prometheus.NewRegistry())

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				collector.RecordSuggestion("flowise", StatusSuccess, time.Second, 0)
				collector.UpdateProviderHealth("flowise", true)
				collector.RecordRAG(RAGSkipped)
			}
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	count := testutil.ToFloat64(collector.suggestionMetrics.suggestionsTotal.WithLabelValues("flowise", StatusSuccess))
	if count != 1000 {
		t.Errorf("Expected 1000 suggestions, got %f", count)
	}
}
