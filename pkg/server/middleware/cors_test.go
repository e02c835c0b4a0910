package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	t.Run("adds CORS headers for allowed origin", func(t *testing.T) {
		config := &CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://desk.example.com"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
		}

		wrapped := CORSMiddleware(config)(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "https://desk.example.com" {
			t.Error("expected Access-Control-Allow-Origin header to be set")
		}
	})

	t.Run("allows all origins with wildcard", func(t *testing.T) {
		config := &CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
		}

		wrapped := CORSMiddleware(config)(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://any-origin.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin")
		if got != "*" && got != "https://any-origin.com" {
			t.Errorf("Access-Control-Allow-Origin = %q, want '*' or the matching origin", got)
		}
	})

	t.Run("handles preflight OPTIONS request", func(t *testing.T) {
		config := &CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}

		wrapped := CORSMiddleware(config)(handler)

		req := httptest.NewRequest(http.MethodOptions, "/v1/suggestions", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("preflight should return 204, got %d", w.Code)
		}

		if w.Header().Get("Access-Control-Allow-Methods") == "" {
			t.Error("Access-Control-Allow-Methods should be set for preflight")
		}

		if w.Header().Get("Access-Control-Allow-Headers") == "" {
			t.Error("Access-Control-Allow-Headers should be set for preflight")
		}

		if w.Body.Len() != 0 {
			t.Error("preflight response should not reach the handler")
		}
	})

	t.Run("blocks disallowed origin", func(t *testing.T) {
		config := &CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://desk.example.com"},
		}

		wrapped := CORSMiddleware(config)(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("should not set CORS headers for disallowed origin")
		}
	})

	t.Run("skips CORS when disabled", func(t *testing.T) {
		config := &CORSConfig{
			Enabled:        false,
			AllowedOrigins: []string{"*"},
		}

		wrapped := CORSMiddleware(config)(handler)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://desk.example.com")
		w := httptest.NewRecorder()

		wrapped.ServeHTTP(w, req)

		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("should not set CORS headers when disabled")
		}
	})
}

func TestDefaultCORSConfig(t *testing.T) {
	config := DefaultCORSConfig()

	if !config.Enabled {
		t.Error("default CORS should be enabled")
	}

	if len(config.AllowedOrigins) == 0 {
		t.Error("default CORS should have allowed origins")
	}

	if len(config.AllowedMethods) == 0 {
		t.Error("default CORS should have allowed methods")
	}
}

func BenchmarkCORSMiddleware(b *testing.B) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	config := DefaultCORSConfig()
	wrapped := CORSMiddleware(config)(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://desk.example.com")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, req)
	}
}
