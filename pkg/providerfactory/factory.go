// Package providerfactory creates provider variants from validated
// configuration and caches live instances in a registry.
//
// The factory maps a provider kind string to the matching variant
// constructor. The registry owns the cached instances, creating them lazily
// on first use and swapping them atomically when the active provider is
// switched at runtime.
package providerfactory

import (
	"log/slog"
	"strings"

	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/providers/azureopenai"
	"caseflow-hq/polaris/pkg/providers/flowise"
	"caseflow-hq/polaris/pkg/providers/openrouter"
)

// Create builds the provider variant for kind with the given configuration.
//
// Kinds are matched case-insensitively; the Azure variant additionally
// answers to the "azureopenai" and "azure-openai" spellings. No network
// calls happen during construction, so a returned error is always a local
// configuration problem.
//
// Errors:
//   - UnsupportedProviderError when kind names no registered variant
//   - ConfigurationError when required fields are missing or invalid
//
// Example:
//
//	cfg := providers.Config{APIKey: "sk-...", Model: "openai/gpt-4o-mini"}
//	provider, err := providerfactory.Create("openrouter", cfg)
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func Create(kind string, config providers.Config) (providers.Provider, error) {
	canonical := NormalizeKind(kind)

	slog.Debug("creating provider",
		"kind", canonical,
	)

	switch canonical {
	case providers.KindFlowise:
		return flowise.NewProvider(config)

	case providers.KindOpenRouter:
		return openrouter.NewProvider(config)

	case providers.KindAzureOpenAI:
		return azureopenai.NewProvider(config)

	default:
		return nil, &providers.UnsupportedProviderError{Kind: kind}
	}
}

// Kinds returns the canonical kind names the factory can create, in the
// order they are documented.
func Kinds() []string {
	return []string{
		providers.KindFlowise,
		providers.KindOpenRouter,
		providers.KindAzureOpenAI,
	}
}

// NormalizeKind lowercases kind, trims surrounding space and resolves the
// accepted Azure aliases to the canonical form. Unknown kinds come back
// normalized but unchanged so error messages show what the caller sent.
func NormalizeKind(kind string) string {
	k := strings.ToLower(strings.TrimSpace(kind))
	switch k {
	case "azureopenai", "azure-openai", "azure_openai":
		return providers.KindAzureOpenAI
	}
	return k
}
