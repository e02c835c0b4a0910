package settings

import (
	"os"
	"strings"

	"caseflow-hq/polaris/pkg/providers"
)

// Environment variable names recognized by the resolver. They sit between
// the settings store (which wins) and the configuration file (which they
// override), so a container deployment can select and configure a provider
// without either a file or a store.
const (
	EnvProvider     = "POLARIS_PROVIDER"
	EnvSystemPrompt = "POLARIS_SYSTEM_PROMPT"

	EnvFlowiseEndpoint = "POLARIS_FLOWISE_ENDPOINT"
	EnvFlowiseAPIKey   = "POLARIS_FLOWISE_API_KEY"

	EnvOpenRouterAPIKey   = "POLARIS_OPENROUTER_API_KEY"
	EnvOpenRouterModel    = "POLARIS_OPENROUTER_MODEL"
	EnvOpenRouterEndpoint = "POLARIS_OPENROUTER_ENDPOINT"
	EnvOpenRouterSiteURL  = "POLARIS_OPENROUTER_SITE_URL"
	EnvOpenRouterSiteName = "POLARIS_OPENROUTER_SITE_NAME"

	EnvAzureAPIKey        = "POLARIS_AZURE_API_KEY"
	EnvAzureDeploymentURI = "POLARIS_AZURE_DEPLOYMENT_URI"
)

// envProviderKind returns the kind selected via environment, or "".
func envProviderKind() string {
	return strings.TrimSpace(os.Getenv(EnvProvider))
}

// envOverlay applies the environment variables relevant to kind on top of
// cfg. Empty variables leave the underlying value untouched.
func envOverlay(kind string, cfg providers.Config) providers.Config {
	if v := os.Getenv(EnvSystemPrompt); v != "" {
		cfg.SystemPrompt = v
	}

	switch kind {
	case providers.KindFlowise:
		if v := os.Getenv(EnvFlowiseEndpoint); v != "" {
			cfg.Endpoint = v
		}
		if v := os.Getenv(EnvFlowiseAPIKey); v != "" {
			cfg.APIKey = v
		}

	case providers.KindOpenRouter:
		if v := os.Getenv(EnvOpenRouterEndpoint); v != "" {
			cfg.Endpoint = v
		}
		if v := os.Getenv(EnvOpenRouterAPIKey); v != "" {
			cfg.APIKey = v
		}
		if v := os.Getenv(EnvOpenRouterModel); v != "" {
			cfg.Model = v
		}
		if v := os.Getenv(EnvOpenRouterSiteURL); v != "" {
			cfg.SiteURL = v
		}
		if v := os.Getenv(EnvOpenRouterSiteName); v != "" {
			cfg.SiteName = v
		}

	case providers.KindAzureOpenAI:
		if v := os.Getenv(EnvAzureAPIKey); v != "" {
			cfg.APIKey = v
		}
		if v := os.Getenv(EnvAzureDeploymentURI); v != "" {
			cfg.DeploymentURI = v
		}
	}

	return cfg
}
