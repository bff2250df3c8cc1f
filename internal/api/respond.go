package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperr "rentacar/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps the error taxonomy onto HTTP responses. Validation errors
// come back field-keyed so the form can render them inline; everything from
// the store collapses to a generic retry message.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
		return
	}

	if errors.Is(err, apperr.ErrDateConflict) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "the requested dates are not available, please pick another date",
		})
		return
	}

	if errors.Is(err, apperr.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	var httpErr *apperr.HTTPError
	if errors.As(err, &httpErr) {
		writeJSON(w, httpErr.Code, map[string]string{"error": httpErr.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "something went wrong, please try again",
	})
}
