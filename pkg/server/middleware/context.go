package middleware

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// RequestIDKey stores the unique request ID in the request context.
const RequestIDKey contextKey = "request_id"
