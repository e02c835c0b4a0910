package suggest

import "time"

// State names recorded in the diagnostic trace, in pipeline order.
const (
	StateResolveConfig = "resolve-config"
	StateHealthGate    = "health-gate"
	StateRAGEnhance    = "rag-enhance"
	StateGenerate      = "generate"
	StateRetry         = "retry"
	StateFinalize      = "finalize"
)

// Result is the outcome of one suggestion request. It is assembled in the
// finalize state and never mutated after return.
type Result struct {
	// ID uniquely identifies this suggestion in logs and audit records.
	ID string `json:"id"`

	// ResponseText is the suggested reply, or a canned apology when
	// UsedFallback is true. Never empty.
	ResponseText string `json:"response_text"`

	// UsedRAG reports whether at least one retrieved passage was folded
	// into the prompt sent upstream.
	UsedRAG bool `json:"used_rag"`

	// UsedFallback reports whether ResponseText is a canned apology
	// instead of upstream output.
	UsedFallback bool `json:"used_fallback"`

	// Provider is the canonical kind that served, or was supposed to
	// serve, the request. Empty only when the active kind could not even
	// be resolved.
	Provider string `json:"provider"`

	// Trace lists the pipeline states entered, in order.
	Trace []string `json:"trace"`

	// Retries is how many generate attempts ran beyond the first.
	Retries int `json:"retries,omitempty"`

	// Sources lists retrieved passage attributions in context order when
	// UsedRAG is set; unattributed passages contribute an empty entry.
	Sources []string `json:"sources,omitempty"`

	// FailureReason summarizes why the pipeline fell back, empty on clean
	// requests. Upstream secrets are redacted before they can reach the
	// underlying errors, so the summary is safe to show and persist.
	FailureReason string `json:"failure_reason,omitempty"`

	// Duration is the wall time of the whole request. Serialized by the
	// API layer in milliseconds, not here.
	Duration time.Duration `json:"-"`
}
