// Package shared holds the response helpers every handler uses: JSON
// encoding and the domain-error to HTTP status mapping.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "labfhir/pkg/domain-errors"
)

// ErrorBody is the wire shape of every error response. Code is a string
// because handlers emit both generic domain codes and endpoint-specific
// ones like "duplicate_upload".
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody under the "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// statusFor maps domain error codes to HTTP statuses.
func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError maps a domain error to its HTTP status and standard envelope.
// Uncoded errors become opaque 500s: internal detail stays in logs, not
// responses.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := err.Error()
	if code == dErrors.CodeInternal {
		message = "An unexpected error occurred"
	}
	WriteJSON(w, statusFor(code), ErrorResponse{Error: ErrorBody{
		Code:    string(code),
		Message: message,
	}})
}

// WriteErrorDetails writes an error envelope with an explicit code, message,
// and details map. Used for responses that carry structured context, like
// the duplicate-upload envelope.
func WriteErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]any) {
	WriteJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}
