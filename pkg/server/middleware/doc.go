// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements the middleware functions applied to every API
// request: request ID generation, structured request logging, CORS headers
// for the agent-desk frontend, and panic recovery.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(RequestID(Logging(CORS(handler))))
//
// Order (innermost to outermost):
//  1. CORS: Answer preflight requests and add Cross-Origin headers
//  2. Logging: Log request/response details
//  3. RequestID: Generate and propagate the request ID
//  4. Recovery: Recover from panics
//
// RequestID wraps Logging so the logged lines carry the ID from the request
// context. Recovery sits outermost so a panic anywhere below it, including
// in the logging middleware itself, still produces a well-formed 500
// response; it reads the ID back from the echoed response header.
//
// # Request ID
//
// RequestIDMiddleware keeps a client-supplied X-Request-ID or generates a
// UUID v4:
//
//	X-Request-ID: 550e8400-e29b-41d4-a716-446655440000
//
// The request ID is:
//   - Added to context for handler access (GetRequestID)
//   - Included in response headers
//   - Logged with all request/response logs
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record one line
// per request:
//
//	{
//	  "time": "2026-08-24T10:30:00Z",
//	  "level": "INFO",
//	  "msg": "request completed",
//	  "method": "POST",
//	  "path": "/v1/suggestions",
//	  "status": 200,
//	  "latency_ms": 1250,
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000"
//	}
//
// Responses with a 5xx status log at error level, 4xx at warn level.
//
// # CORS
//
// CORSMiddleware adds Cross-Origin Resource Sharing headers so the
// browser-based agent desk can call the API:
//
//	Access-Control-Allow-Origin: https://desk.example.com
//	Access-Control-Allow-Methods: GET, POST, OPTIONS
//	Access-Control-Allow-Headers: Authorization, Content-Type, X-Request-ID
//
// Configuration comes from the server section of the configuration file:
//
//	server:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["https://desk.example.com"]
//	    allowed_methods: ["GET", "POST", "OPTIONS"]
//	    allowed_headers: ["Authorization", "Content-Type", "X-Request-ID"]
//
// # Recovery
//
// RecoveryMiddleware catches panics in handlers and converts them to HTTP
// 500 responses in the service error envelope:
//
//	{
//	  "error": {
//	    "message": "An internal error occurred. Please try again later.",
//	    "code": "internal_error"
//	  }
//	}
//
// The panic stack trace is logged but not exposed to clients.
package middleware
