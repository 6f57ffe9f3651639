// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/aanand-mishra/students-api/internal/types"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a student, a list, a
// message…). Error responses always look like:
//
//	{ "status": "error", "error": "Student not found" }
//
// Validation failures additionally list every offending field:
//
//	{ "status": "error", "error": "field age must be …",
//	  "fields": [ { "field": "age", "reason": "must be …" } ] }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status string             `json:"status"`
	Error  string             `json:"error"`
	Fields []types.FieldError `json:"fields,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteNoContent writes a bare 204 with no body.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// GeneralError builds the error envelope from a plain message. Messages
// must be safe to show to clients; never pass a raw datastore error.
func GeneralError(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError converts a *types.ValidationError into the envelope,
// keeping the per-field breakdown.
func ValidationError(err *types.ValidationError) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
		Fields: err.Fields,
	}
}
