package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodyBytes is the maximum allowed request body size (1MB). Support
// transcripts run a few kilobytes; anything near the cap is a client bug.
const maxBodyBytes = 1 << 20

// Error codes returned in the error envelope.
const (
	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeMethodNotAllowed indicates the wrong HTTP method was used.
	CodeMethodNotAllowed = "method_not_allowed"

	// CodeRequestTooLarge indicates the request payload is too large.
	CodeRequestTooLarge = "request_too_large"

	// CodeUnknownKind indicates the requested provider kind does not exist.
	CodeUnknownKind = "unknown_kind"

	// CodeSwitchFailed indicates the provider switch could not be applied.
	CodeSwitchFailed = "switch_failed"

	// CodeInternalError indicates an internal server error.
	CodeInternalError = "internal_error"
)

// errorResponse is the error envelope for all non-2xx responses. The
// recovery middleware writes the same shape for panics.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// requestError is a parse or validation failure with the response already
// decided.
type requestError struct {
	status  int
	code    string
	message string
}

// Error implements the error interface.
func (e *requestError) Error() string {
	return e.message
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// writeError writes the error envelope with the given status code.
func writeError(w http.ResponseWriter, statusCode int, code, message string) error {
	return writeJSON(w, statusCode, &errorResponse{
		Error: errorDetail{Message: message, Code: code},
	})
}

// writeMethodNotAllowed rejects r's method, naming the one that works.
func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	_ = writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("Method %s not allowed. Use %s instead.", r.Method, allowed))
}
