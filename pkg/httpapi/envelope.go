// Package httpapi defines the response envelope shared by every API
// endpoint.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error represents a standardized API error payload.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the standard response wrapper for API endpoints.
type Envelope struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with proper headers.
func WriteJSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// WriteOK writes a success response.
func WriteOK(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{OK: true, Data: data})
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	WriteJSON(w, status, Envelope{OK: false, Error: &Error{Code: code, Message: message, Details: details}})
}

const (
	ErrInvalidRequest = "invalid_request"
	ErrNotFound       = "not_found"
	ErrGateDenied     = "gate_denied"
	ErrInternal       = "internal_error"
)
