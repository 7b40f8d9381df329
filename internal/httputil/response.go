package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code.
// It handles encoding errors safely by marshaling first, preventing
// partial responses if encoding fails after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// ErrorResponse is the body of every failed request. The widget reads
// "error"; "message" and "errors" are only set for validation failures.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Errors  map[string]interface{} `json:"errors,omitempty"`
}

// RespondError writes an {"error": detail} response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondJSON(w, status, ErrorResponse{Error: detail})
}

// RespondValidationError writes a 422 with the per-field messages
func RespondValidationError(w http.ResponseWriter, message string, fields map[string]interface{}) {
	RespondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   message,
		Message: message,
		Errors:  fields,
	})
}
