package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/seo-dashboard/internal/errors"
	"github.com/seo-dashboard/internal/types"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response) // nolint:errcheck // best effort
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data) // nolint:errcheck // best effort
	}
}

// respondServiceError maps a coordination-layer error onto an HTTP response
func respondServiceError(w http.ResponseWriter, err error) {
	var ce *apperrors.CategorizedError
	if errors.As(err, &ce) {
		respondError(w, ce.StatusCode, ce.Code, ce.Message, ce.Details)
		return
	}

	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", nil)
}
