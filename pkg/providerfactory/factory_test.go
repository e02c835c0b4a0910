package providerfactory

import (
	"errors"
	"testing"

	"caseflow-hq/polaris/pkg/providers"
)

func TestCreateUnknownKind(t *testing.T) {
	_, err := Create("unknown", providers.Config{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var unsupported *providers.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedProviderError, got %T: %v", err, err)
	}
	if unsupported.Kind != "unknown" {
		t.Errorf("expected kind %q in error, got %q", "unknown", unsupported.Kind)
	}
}

func TestCreateKindCaseInsensitive(t *testing.T) {
	tests := []struct {
		kind     string
		wantKind string
	}{
		{kind: "Flowise", wantKind: providers.KindFlowise},
		{kind: "FLOWISE", wantKind: providers.KindFlowise},
		{kind: " openrouter ", wantKind: providers.KindOpenRouter},
		{kind: "OpenRouter", wantKind: providers.KindOpenRouter},
		{kind: "Azure", wantKind: providers.KindAzureOpenAI},
		{kind: "AzureOpenAI", wantKind: providers.KindAzureOpenAI},
		{kind: "azure-openai", wantKind: providers.KindAzureOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			p, err := Create(tt.kind, validConfig(tt.wantKind))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer p.Close()

			if p.GetKind() != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, p.GetKind())
			}
		})
	}
}

func TestCreatePropagatesConfigurationError(t *testing.T) {
	// OpenRouter without an API key must fail before any instance exists.
	_, err := Create("openrouter", providers.Config{Model: "openai/gpt-4o-mini"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var cfgErr *providers.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
}

func TestKindsListsAllVariants(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 3 {
		t.Fatalf("expected 3 kinds, got %d: %v", len(kinds), kinds)
	}

	for _, kind := range kinds {
		p, err := Create(kind, validConfig(kind))
		if err != nil {
			t.Errorf("kind %q: expected constructible with valid config, got %v", kind, err)
			continue
		}
		p.Close()
	}
}

// validConfig returns the minimal config each kind accepts.
func validConfig(kind string) providers.Config {
	switch kind {
	case providers.KindOpenRouter:
		return providers.Config{APIKey: "sk-or-test-123456", Model: "openai/gpt-4o-mini"}
	case providers.KindAzureOpenAI:
		return providers.Config{
			APIKey:        "azure-test-key-123456",
			DeploymentURI: "https://acme.swedencentral.cognitiveservices.azure.com/openai/deployments/gpt4o",
		}
	default:
		return providers.Config{Endpoint: "http://localhost:3000/api/v1/prediction/flow-1"}
	}
}
