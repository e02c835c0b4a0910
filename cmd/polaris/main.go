// Polaris is an AI suggestion service for customer-support chat.
//
// It sits between a support desk and a set of interchangeable AI
// providers, offering:
//   - A single suggestion API backed by Flowise, OpenRouter, or Azure OpenAI
//   - Retrieval-augmented prompts built from knowledge-base search results
//   - Runtime provider switching persisted across restarts
//   - Privacy-preserving audit records for every suggestion served
//   - Health-aware retries with graceful fallback replies
//
// Usage:
//
//	# Start server with default configuration
//	polaris run
//
//	# Start with custom configuration file
//	polaris run --config /path/to/config.yaml
//
//	# Show version information
//	polaris version
//
//	# Validate configuration without starting the server
//	polaris validate-config
//
//	# Load test a running server
//	polaris benchmark --target http://localhost:8080 --duration 30s
//
// For complete documentation, see: https://github.com/caseflow-hq/polaris
package main

func main() {
	Execute()
}
