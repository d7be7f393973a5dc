package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evyataryagoni/netlookup/internal/models"
	"github.com/evyataryagoni/netlookup/internal/validate"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, so the status can't change anymore
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}

// respondLookupError maps a lookup failure to its status code.
// Input errors are the caller's fault, anything else is an upstream failure.
func respondLookupError(w http.ResponseWriter, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, verr.Message)
		return
	}
	respondError(w, http.StatusBadGateway, err.Error())
}
