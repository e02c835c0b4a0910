package providers

import "context"

// Provider is the core interface that all upstream provider variants must
// implement. It gives the suggestion pipeline a single abstraction over
// backends with very different request shapes and auth schemes (Flowise,
// OpenRouter, Azure OpenAI).
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately
// when the context is cancelled.
//
// Example usage:
//
//	provider, err := providerfactory.Create("openrouter", cfg)
//	if err != nil {
//	    return err
//	}
//
//	reply, err := provider.GenerateReply(ctx, transcript, conversationID)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(reply)
type Provider interface {
	// GenerateReply sends conversation text upstream and returns the model's
	// reply as plain text.
	//
	// text is either a raw multi-turn transcript or an already enhanced
	// prompt carrying the context marker (see the transcript package);
	// marked text is sent as a single user turn, never re-parsed into
	// dialogue. conversationID is forwarded for upstream session continuity.
	//
	// Returns a NetworkError for transport failures and non-2xx statuses,
	// and a ResponseFormatError when the response is missing the expected
	// text fields. On success the reply is never empty.
	GenerateReply(ctx context.Context, text, conversationID string) (string, error)

	// HealthCheck probes the upstream with the smallest valid request for
	// this variant and reports whether it answered.
	//
	// Probe failures are never propagated: any transport error or non-2xx
	// status yields false. The health snapshot, including its timestamp,
	// is updated on every call regardless of outcome.
	HealthCheck(ctx context.Context) bool

	// GetKind returns the canonical provider kind (e.g. "openrouter").
	GetKind() string

	// GetConfig returns the configuration the provider was constructed with.
	GetConfig() Config

	// GetCapabilities reports what the upstream natively offers. The
	// orchestrator uses this to decide whether retrieval enhancement
	// applies to a given provider.
	GetCapabilities() Capabilities

	// IsHealthy returns the cached health verdict without probing.
	IsHealthy() bool

	// GetHealth returns the full health snapshot.
	GetHealth() Health

	// MarkHealthy records a successful real request, resetting health state.
	MarkHealthy()

	// MarkUnhealthy records a definitive failure, such as exhausted retries.
	MarkUnhealthy(reason error)

	// Close releases pooled connections.
	Close() error
}
