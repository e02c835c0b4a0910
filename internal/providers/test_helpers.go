package providers

import (
	"testing"
	"time"

	"caseflow-hq/polaris/pkg/providers"
)

// TestConfig returns a provider configuration suitable for the given kind,
// pointed at endpoint. For the Azure kind the endpoint is treated as the
// base of a deployment URI.
func TestConfig(kind, endpoint string) providers.Config {
	cfg := providers.Config{
		Kind:            kind,
		APIKey:          "test-key-123456",
		GenerateTimeout: 5 * time.Second,
		ProbeTimeout:    2 * time.Second,
	}

	switch kind {
	case providers.KindFlowise:
		cfg.Endpoint = endpoint + "/api/v1/prediction/test-flow"
	case providers.KindOpenRouter:
		cfg.Endpoint = endpoint
		cfg.Model = "openai/gpt-4o-mini"
	case providers.KindAzureOpenAI:
		cfg.DeploymentURI = endpoint + "/openai/deployments/gpt4o/chat/completions?api-version=2024-06-01"
	}

	return cfg
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
