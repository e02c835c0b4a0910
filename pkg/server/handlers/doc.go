// Package handlers provides the HTTP request handlers for the suggestion
// API.
//
// This package implements the endpoint handlers the server mounts:
// suggestion generation, runtime provider switching, and the provider
// status listing. Each handler parses and validates its request, calls into
// the suggestion pipeline or its collaborators, and writes a JSON response.
//
// # Endpoints
//
//   - SuggestionsHandler: POST /v1/suggestions, runs the pipeline
//   - ProviderSwitchHandler: POST /v1/providers/switch, swaps the active kind
//   - ProviderListHandler: GET /v1/providers, active kind + health snapshot
//
// # Request Flow
//
// The suggestions handler follows a consistent pattern:
//
//  1. Parse and validate the request body
//  2. Run the suggestion pipeline (it never errors)
//  3. Record the outcome: Prometheus counters and an async audit record
//  4. Write the result with the duration in milliseconds
//
// Provider trouble never becomes an HTTP error: a degraded request returns
// 200 with used_fallback set and a canned apology as the response text, so
// the agent desk always has something to show.
//
// # Error Handling
//
// Malformed requests return the service error envelope:
//
//	{
//	  "error": {
//	    "message": "transcript is required",
//	    "code": "missing_field"
//	  }
//	}
//
// The switch handler additionally distinguishes an unknown kind (400) from
// a kind that exists but cannot be constructed (409): the second leaves the
// current provider serving, and the envelope says why the new one refused.
//
// # Recording
//
// Outcome recording is fire-and-forget. Metrics are counter bumps; audit
// records go through an async recorder that drops on a full buffer rather
// than delaying the response. A nil collector or auditor disables the
// respective path, which is how the run command wires a deployment with
// metrics or auditing turned off.
package handlers
