// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
	"github.com/fairyhunter13/realtime-catalog/internal/auth"
	"github.com/fairyhunter13/realtime-catalog/internal/catalog"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps service errors onto the API taxonomy.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalog.ErrInvariantViolation):
		WriteJSONError(w, http.StatusBadRequest, "invariant_violation", err.Error())
	case errors.Is(err, account.ErrConflict):
		WriteJSONError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, account.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "")
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
