package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"caseflow-hq/polaris/pkg/providerfactory"
	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/settings"
)

func TestProviderSwitchHandlerSuccess(t *testing.T) {
	collector := testCollector()
	suggester := &fakeSuggester{}
	h := NewProviderSwitchHandler(suggester, collector, nil)

	w := postJSON(t, h, "/v1/providers/switch", `{"kind": "OpenRouter"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. Body: %s", w.Code, w.Body.String())
	}
	if suggester.lastSwitch != "openrouter" {
		t.Errorf("switched to %q, want the canonical openrouter", suggester.lastSwitch)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if resp["active"] != "openrouter" {
		t.Errorf("active = %v, want openrouter", resp["active"])
	}

	if got := counterValue(t, collector.Registry(), "polaris_suggest_provider_switches_total"); got != 1 {
		t.Errorf("provider_switches_total = %v, want 1", got)
	}
}

func TestProviderSwitchHandlerSwitchFailures(t *testing.T) {
	tests := []struct {
		name       string
		switchErr  error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unknown kind",
			switchErr:  &providers.UnsupportedProviderError{Kind: "cohere"},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeUnknownKind,
		},
		{
			name: "bad configuration",
			switchErr: &providers.ConfigurationError{
				Kind: "azureopenai", Field: "endpoint", Message: "endpoint is required",
			},
			wantStatus: http.StatusConflict,
			wantCode:   CodeSwitchFailed,
		},
		{
			name:       "persistence failure",
			switchErr:  errors.New("settings store: disk I/O error"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := testCollector()
			suggester := &fakeSuggester{switchErr: tt.switchErr}
			h := NewProviderSwitchHandler(suggester, collector, nil)

			w := postJSON(t, h, "/v1/providers/switch", `{"kind": "cohere"}`)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decodeErrorCode(t, w); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
			if got := counterValue(t, collector.Registry(), "polaris_suggest_provider_switches_total"); got != 0 {
				t.Errorf("provider_switches_total = %v, want 0 after a failed switch", got)
			}
		})
	}
}

func TestProviderSwitchHandlerRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "wrong method",
			method:     http.MethodGet,
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   CodeMethodNotAllowed,
		},
		{
			name:       "invalid JSON",
			method:     http.MethodPost,
			body:       `{"kind": `,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeInvalidJSON,
		},
		{
			name:       "missing kind",
			method:     http.MethodPost,
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeMissingField,
		},
		{
			name:       "blank kind",
			method:     http.MethodPost,
			body:       `{"kind": "  "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggester := &fakeSuggester{}
			h := NewProviderSwitchHandler(suggester, nil, nil)

			req := httptest.NewRequest(tt.method, "/v1/providers/switch", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := decodeErrorCode(t, w); got != tt.wantCode {
				t.Errorf("error code = %q, want %q", got, tt.wantCode)
			}
			if suggester.switchCalls != 0 {
				t.Error("switch must not run for a rejected request")
			}
		})
	}
}

func TestProviderListHandler(t *testing.T) {
	active := &fakeActiveSource{selection: settings.Selection{Kind: "flowise"}}
	statuses := &fakeStatusSource{
		defaultKind: "flowise",
		statuses: []providerfactory.Status{
			{Kind: "flowise", Healthy: true, LastCheckedAt: time.Now(), BuiltinRetrieval: true},
			{Kind: "openrouter", Healthy: false, LastError: "connection refused", ConsecutiveFailures: 3},
		},
	}
	h := NewProviderListHandler(active, statuses, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. Body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Active      string                  `json:"active"`
		DefaultKind string                  `json:"default_kind"`
		Providers   []providerfactory.Status `json:"providers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}

	if resp.Active != "flowise" {
		t.Errorf("active = %q, want flowise", resp.Active)
	}
	if resp.DefaultKind != "flowise" {
		t.Errorf("default_kind = %q, want flowise", resp.DefaultKind)
	}
	if len(resp.Providers) != 2 {
		t.Fatalf("got %d providers, want 2", len(resp.Providers))
	}
	if !resp.Providers[0].BuiltinRetrieval {
		t.Error("flowise should report builtin retrieval")
	}
	if resp.Providers[1].LastError != "connection refused" {
		t.Errorf("last_error = %q, want connection refused", resp.Providers[1].LastError)
	}

	if strings.Contains(w.Body.String(), "api_key") || strings.Contains(w.Body.String(), "sk-") {
		t.Error("provider listing must not leak credentials")
	}
}

func TestProviderListHandlerActiveUnresolvable(t *testing.T) {
	active := &fakeActiveSource{err: errors.New("settings store: database is locked")}
	statuses := &fakeStatusSource{defaultKind: "flowise"}
	h := NewProviderListHandler(active, statuses, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: listing degrades, it does not fail", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if _, present := resp["active"]; present {
		t.Errorf("active = %v, want the field omitted when unresolvable", resp["active"])
	}
}

func TestProviderListHandlerNoCachedProviders(t *testing.T) {
	active := &fakeActiveSource{selection: settings.Selection{Kind: "flowise"}}
	statuses := &fakeStatusSource{defaultKind: "flowise"}
	h := NewProviderListHandler(active, statuses, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/providers", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"providers":[]`) {
		t.Errorf("providers should serialize as an empty array, got: %s", w.Body.String())
	}
}

func TestProviderListHandlerRejectsPost(t *testing.T) {
	h := NewProviderListHandler(&fakeActiveSource{}, &fakeStatusSource{}, nil)

	w := postJSON(t, h, "/v1/providers", `{}`)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if got := w.Header().Get("Allow"); got != http.MethodGet {
		t.Errorf("Allow = %q, want GET", got)
	}
}
