package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Record is the audit trail entry for a single suggestion request.
type Record struct {
	// ID is the suggestion id assigned by the pipeline (UUID v4).
	ID string `json:"id"`

	// CreatedAt is when the suggestion request finished.
	CreatedAt time.Time `json:"created_at"`

	// ConversationHash identifies the conversation without storing its
	// raw id. See HashConversationID.
	ConversationHash string `json:"conversation_hash"`

	// Provider is the canonical kind that served (or was supposed to
	// serve) the request.
	Provider string `json:"provider"`

	// UsedRAG reports whether retrieved context was folded into the
	// prompt.
	UsedRAG bool `json:"used_rag"`

	// UsedFallback reports whether the response was a canned apology.
	UsedFallback bool `json:"used_fallback"`

	// Retries is how many generate attempts ran beyond the first.
	Retries int `json:"retries"`

	// TranscriptChars is the transcript length in bytes. The transcript
	// itself is never persisted.
	TranscriptChars int `json:"transcript_chars"`

	// Trace lists the pipeline states entered, in order.
	Trace []string `json:"trace"`

	// Duration is the request wall time.
	Duration time.Duration `json:"duration_ms"`

	// Error is a scrubbed failure summary, empty for clean requests.
	Error string `json:"error,omitempty"`
}

// Query filters audit records. Zero-valued fields do not filter.
type Query struct {
	// Since and Until bound CreatedAt inclusively.
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`

	// Provider filters on the serving kind.
	Provider string `json:"provider,omitempty"`

	// UsedRAG and UsedFallback filter on the outcome flags.
	UsedRAG      *bool `json:"used_rag,omitempty"`
	UsedFallback *bool `json:"used_fallback,omitempty"`

	// Limit caps the result set (default 100); Offset skips rows.
	// Results are ordered newest first.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store is the persistence backend for audit records. Implementations must
// be safe for concurrent use.
type Store interface {
	// Insert persists one record.
	Insert(ctx context.Context, rec *Record) error

	// Query returns records matching q, newest first.
	Query(ctx context.Context, q Query) ([]*Record, error)

	// Count returns how many records match q.
	Count(ctx context.Context, q Query) (int64, error)

	// DeleteBefore removes records with CreatedAt strictly before cutoff
	// and returns how many were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many
	// were removed.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Ping verifies the backend is reachable. Used by readiness checks.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ErrBufferFull is returned by Recorder.Record when the async buffer has no
// room and the record was dropped.
var ErrBufferFull = errors.New("audit: buffer full, record dropped")

// StorageError wraps a failed storage operation with enough context to log.
type StorageError struct {
	// Op is the storage operation that failed (open, insert, query...)
	Op string

	// Err is the underlying driver error
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain support.
func (e *StorageError) Unwrap() error {
	return e.Err
}
