package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"caseflow-hq/polaris/pkg/providerfactory"
	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/server/middleware"
	"caseflow-hq/polaris/pkg/telemetry/metrics"
)

// switchRequest is the POST /v1/providers/switch body.
type switchRequest struct {
	// Kind is the provider to switch to. Matched case-insensitively;
	// the Azure aliases are accepted.
	Kind string `json:"kind"`
}

// switchResponse confirms a completed switch.
type switchResponse struct {
	// Active is the canonical kind now serving suggestions.
	Active string `json:"active"`
}

// providersResponse is the GET /v1/providers body.
type providersResponse struct {
	// Active is the kind the next suggestion will use, empty when the
	// selection cannot be resolved.
	Active string `json:"active,omitempty"`

	// DefaultKind is the configured fallback kind.
	DefaultKind string `json:"default_kind"`

	// Providers lists the cached instances with their health snapshots.
	// Kinds that have never served a request do not appear.
	Providers []providerfactory.Status `json:"providers"`
}

// ProviderSwitchHandler serves POST /v1/providers/switch. A successful
// switch applies to the next suggestion request; in-flight requests finish
// on the provider they started with.
type ProviderSwitchHandler struct {
	suggester Suggester
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewProviderSwitchHandler creates the provider switch handler. collector
// may be nil when metrics are disabled.
func NewProviderSwitchHandler(suggester Suggester, collector *metrics.Collector, logger *slog.Logger) *ProviderSwitchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderSwitchHandler{
		suggester: suggester,
		collector: collector,
		logger:    logger.With("component", "api.providers"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ProviderSwitchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	req, reqErr := parseSwitchRequest(r)
	if reqErr != nil {
		h.logger.WarnContext(ctx, "Rejected switch request",
			"request_id", requestID,
			"error", reqErr.message,
		)
		_ = writeError(w, reqErr.status, reqErr.code, reqErr.message)
		return
	}

	canonical := providerfactory.NormalizeKind(req.Kind)

	if err := h.suggester.SwitchProvider(ctx, canonical); err != nil {
		h.logger.ErrorContext(ctx, "Provider switch failed",
			"request_id", requestID,
			"kind", canonical,
			"error", err,
		)
		writeSwitchError(w, canonical, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordProviderSwitch(canonical)
	}

	if err := writeJSON(w, http.StatusOK, &switchResponse{Active: canonical}); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write response",
			"request_id", requestID,
			"error", err,
		)
	}
}

// parseSwitchRequest parses and validates the request body.
func parseSwitchRequest(r *http.Request) (*switchRequest, *requestError) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeInvalidJSON,
			message: fmt.Sprintf("failed to read request body: %v", err),
		}
	}

	var req switchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeInvalidJSON,
			message: fmt.Sprintf("invalid JSON: %v", err),
		}
	}

	if strings.TrimSpace(req.Kind) == "" {
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    CodeMissingField,
			message: "kind is required",
		}
	}

	return &req, nil
}

// writeSwitchError maps a failed switch to the envelope. An unknown kind is
// the caller's mistake; anything else means the target kind exists but could
// not be brought up, leaving the current provider in place.
func writeSwitchError(w http.ResponseWriter, kind string, err error) {
	var unsupported *providers.UnsupportedProviderError
	if errors.As(err, &unsupported) {
		_ = writeError(w, http.StatusBadRequest, CodeUnknownKind,
			fmt.Sprintf("unknown provider kind %q", kind))
		return
	}

	var confErr *providers.ConfigurationError
	if errors.As(err, &confErr) {
		_ = writeError(w, http.StatusConflict, CodeSwitchFailed,
			fmt.Sprintf("switch to %q failed: %v", kind, confErr))
		return
	}

	_ = writeError(w, http.StatusInternalServerError, CodeInternalError,
		fmt.Sprintf("switch to %q failed: %v", kind, err))
}

// ProviderListHandler serves GET /v1/providers: the active selection, the
// configured default, and a health snapshot of every cached instance.
type ProviderListHandler struct {
	active   ActiveSource
	statuses StatusSource
	logger   *slog.Logger
}

// NewProviderListHandler creates the provider list handler.
func NewProviderListHandler(active ActiveSource, statuses StatusSource, logger *slog.Logger) *ProviderListHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderListHandler{
		active:   active,
		statuses: statuses,
		logger:   logger.With("component", "api.providers"),
	}
}

// ServeHTTP implements http.Handler.
func (h *ProviderListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	resp := &providersResponse{
		DefaultKind: h.statuses.DefaultKind(),
		Providers:   h.statuses.Statuses(),
	}

	// Only the kind leaves the process; the selection's merged config
	// carries credentials.
	sel, err := h.active.Active(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "Active selection unresolvable",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	} else {
		resp.Active = sel.Kind
	}

	if resp.Providers == nil {
		resp.Providers = []providerfactory.Status{}
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.logger.ErrorContext(ctx, "Failed to write response",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
	}
}
