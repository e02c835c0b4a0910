package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a 500
// response in the service's error envelope. It logs the panic with a stack
// trace for debugging but does not expose internal details to clients.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				// Recovery wraps the request ID middleware, so the ID is
				// not in this context; the echoed response header has it.
				requestID := GetRequestID(r.Context())
				if requestID == "" {
					requestID = w.Header().Get(RequestIDHeader)
				}
				stack := debug.Stack()

				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", requestID,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(stack),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)

				// Same envelope the handlers package writes; encoding
				// errors are ignored at this point.
				_ = json.NewEncoder(w).Encode(map[string]map[string]string{
					"error": {
						"message": "An internal error occurred. Please try again later.",
						"code":    "internal_error",
					},
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
