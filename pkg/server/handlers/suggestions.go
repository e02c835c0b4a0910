package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"caseflow-hq/polaris/pkg/audit"
	"caseflow-hq/polaris/pkg/server/middleware"
	"caseflow-hq/polaris/pkg/suggest"
	"caseflow-hq/polaris/pkg/telemetry/metrics"
)

// suggestionRequest is the POST /v1/suggestions body.
type suggestionRequest struct {
	// ConversationID identifies the support conversation. Optional; audit
	// records then carry no conversation hash.
	ConversationID string `json:"conversation_id"`

	// Transcript is the conversation so far, one "Role: text" turn per
	// line. Required.
	Transcript string `json:"transcript"`

	// EnableRAG asks for knowledge-base retrieval enhancement. Honored
	// only when retrieval is configured server-side.
	EnableRAG bool `json:"enable_rag"`
}

// suggestionResponse is a pipeline result plus its wall time in
// milliseconds.
type suggestionResponse struct {
	suggest.Result
	DurationMS int64 `json:"duration_ms"`
}

// SuggestionsHandler serves POST /v1/suggestions. Every well-formed request
// gets a 200 with a usable response text; provider trouble surfaces as
// used_fallback in the body, never as an HTTP error.
type SuggestionsHandler struct {
	suggester Suggester
	collector *metrics.Collector
	auditor   Auditor
	logger    *slog.Logger
}

// NewSuggestionsHandler creates the suggestions handler. collector and
// auditor may be nil when metrics or the audit trail are disabled.
func NewSuggestionsHandler(suggester Suggester, collector *metrics.Collector, auditor Auditor, logger *slog.Logger) *SuggestionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionsHandler{
		suggester: suggester,
		collector: collector,
		auditor:   auditor,
		logger:    logger.With("component", "api.suggestions"),
	}
}

// ServeHTTP implements http.Handler.
func (h *SuggestionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	req, reqErr := parseSuggestionRequest(r)
	if reqErr != nil {
		h.logger.WarnContext(ctx, "Rejected suggestion request",
			"request_id", requestID,
			"error", reqErr.message,
		)
		_ = writeError(w, reqErr.status, reqErr.code, reqErr.message)
		return
	}

	h.logger.InfoContext(ctx, "Processing suggestion request",
		"request_id", requestID,
		"conversation_id", req.ConversationID,
		"transcript_chars", len(req.Transcript),
		"enable_rag", req.EnableRAG,
	)

	res := h.suggester.GenerateSuggestion(ctx, req.ConversationID, req.Transcript, req.EnableRAG)

	h.recordMetrics(res)
	h.recordAudit(ctx, req, res)

	resp := &suggestionResponse{
		Result:     res,
		DurationMS: res.Duration.Milliseconds(),
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
}

// parseSuggestionRequest parses and validates the request body.
func parseSuggestionRequest(r *http.Request) (*suggestionRequest, *requestError) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeInvalidJSON,
			message: fmt.Sprintf("failed to read request body: %v", err),
		}
	}

	if len(body) >= maxBodyBytes {
		return nil, &requestError{
			status:  http.StatusRequestEntityTooLarge,
			code:    CodeRequestTooLarge,
			message: fmt.Sprintf("request body exceeds maximum size of %d bytes", maxBodyBytes),
		}
	}

	var req suggestionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeInvalidJSON,
			message: fmt.Sprintf("invalid JSON: %v", err),
		}
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeMissingField,
			message: "transcript is required",
		}
	}

	return &req, nil
}

// recordMetrics feeds the suggestion outcome into the Prometheus collector.
func (h *SuggestionsHandler) recordMetrics(res suggest.Result) {
	if h.collector == nil {
		return
	}

	status := metrics.StatusSuccess
	if res.UsedFallback {
		status = metrics.StatusFallback
	}
	h.collector.RecordSuggestion(res.Provider, status, res.Duration, res.Retries)
	h.collector.RecordRAG(ragOutcome(res))
}

// recordAudit enqueues the audit record. A full buffer drops the record and
// bumps the drop counter; the request itself is never affected.
func (h *SuggestionsHandler) recordAudit(ctx context.Context, req *suggestionRequest, res suggest.Result) {
	if h.auditor == nil {
		return
	}

	rec := &audit.Record{
		ID:               res.ID,
		ConversationHash: audit.HashConversationID(req.ConversationID),
		Provider:         res.Provider,
		UsedRAG:          res.UsedRAG,
		UsedFallback:     res.UsedFallback,
		Retries:          res.Retries,
		TranscriptChars:  len(req.Transcript),
		Trace:            res.Trace,
		Duration:         res.Duration,
		Error:            res.FailureReason,
	}

	if err := h.auditor.Record(rec); err != nil {
		if errors.Is(err, audit.ErrBufferFull) && h.collector != nil {
			h.collector.RecordAuditDrop()
		}
		h.logger.WarnContext(ctx, "Audit record not queued",
			"suggestion_id", res.ID,
			"error", err,
		)
	}
}

// ragOutcome classifies what retrieval did for this request: enhanced when
// passages made it into the prompt, degraded when the rag-enhance state ran
// but produced nothing, skipped otherwise.
func ragOutcome(res suggest.Result) string {
	if res.UsedRAG {
		return metrics.RAGEnhanced
	}
	for _, state := range res.Trace {
		if state == suggest.StateRAGEnhance {
			return metrics.RAGDegraded
		}
	}
	return metrics.RAGSkipped
}
