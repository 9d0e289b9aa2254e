package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// envelope is the generic JSON response body. Handlers set success/message and
// merge endpoint-specific payload keys on top.
type envelope map[string]any

// writeJSON serializes body with the given status. Encoding failures are
// logged; at that point the status line is already on the wire.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response body", "error", err)
	}
}

// succeed writes a success envelope with an optional message and extra
// payload keys.
func succeed(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// fail writes a failure envelope with the given message.
func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// internalError maps an unexpected error to a 500 failure envelope. The error
// text is included in the message so clients can report it.
func internalError(w http.ResponseWriter, err error) {
	fail(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
}

// decodeBody parses the JSON request body into dst. A malformed body fails
// the request with a 400; an empty body decodes to the zero value so the
// validators can report the missing fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err == io.EOF {
			return true
		}
		fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
