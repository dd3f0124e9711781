package httputil

import (
	"encoding/json"
	"net/http"
)

// APIError is the error envelope returned by every endpoint. Error carries a
// stable machine-readable code; the remaining fields are populated per code.
type APIError struct {
	Error string `json:"error"`
	// Raw echoes unparseable model output so callers can diagnose 502s.
	Raw string `json:"raw,omitempty"`
	// Missing enumerates absent configuration values on 503s.
	Missing []string `json:"missing,omitempty"`
	Message string   `json:"message,omitempty"`
}

func write(w http.ResponseWriter, requestID string, statusCode int, body APIError) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set("X-Request-ID", requestID)
	}
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

func WriteMissingTokenError(w http.ResponseWriter, requestID string) {
	write(w, requestID, http.StatusUnauthorized, APIError{Error: "missing_bearer_token"})
}

func WriteInvalidTokenError(w http.ResponseWriter, requestID string) {
	write(w, requestID, http.StatusUnauthorized, APIError{Error: "invalid_google_token"})
}

func WriteMissingInputError(w http.ResponseWriter, requestID string) {
	write(w, requestID, http.StatusBadRequest, APIError{Error: "missing_text_or_image"})
}

func WriteBadRequestError(w http.ResponseWriter, requestID, message string) {
	write(w, requestID, http.StatusBadRequest, APIError{Error: "invalid_request", Message: message})
}

func WritePayloadTooLargeError(w http.ResponseWriter, requestID string) {
	write(w, requestID, http.StatusRequestEntityTooLarge, APIError{Error: "payload_too_large"})
}

// WriteInvalidModelOutputError reports model output that failed the response
// contract. The raw text is echoed verbatim, never coerced.
func WriteInvalidModelOutputError(w http.ResponseWriter, requestID, raw string) {
	write(w, requestID, http.StatusBadGateway, APIError{Error: "model_returned_invalid_json", Raw: raw})
}

func WriteServerNotConfiguredError(w http.ResponseWriter, requestID string, missing []string) {
	write(w, requestID, http.StatusServiceUnavailable, APIError{Error: "server_not_configured", Missing: missing})
}

func WriteContentBlockedError(w http.ResponseWriter, requestID, message string) {
	write(w, requestID, 451, APIError{Error: "content_blocked", Message: message})
}

func WriteInternalError(w http.ResponseWriter, requestID, message string) {
	write(w, requestID, http.StatusInternalServerError, APIError{Error: "internal_error", Message: message})
}
