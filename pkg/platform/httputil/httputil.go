// Package httputil centralizes JSON encoding and error translation for the
// HTTP layer so handlers stay thin.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"dinehalal/pkg/platform/sentinel"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates an error into a JSON error response. Internal errors
// omit the description so infrastructure details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, sentinel.ErrUnavailable):
		writeErrorBody(w, http.StatusServiceUnavailable, "unavailable", err.Error())
	default:
		writeErrorBody(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// WriteBadRequest reports a client-side validation failure with its reason.
func WriteBadRequest(w http.ResponseWriter, description string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", description)
}

func writeErrorBody(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" && status < http.StatusInternalServerError {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}

// DecodeJSON decodes a JSON request body into dst, rejecting unknown fields.
// On failure it writes a bad-request response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if logger != nil {
			logger.DebugContext(r.Context(), "request decode failed", "path", r.URL.Path, "error", err)
		}
		WriteBadRequest(w, "malformed request body")
		return false
	}
	return true
}
