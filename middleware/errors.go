// ABOUTME: JSON error response helper for middleware
// ABOUTME: Ensures middleware error responses match the API's uniform error body

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/campus-tools/lettertrack/backend/models"
)

// writeJSONError writes an error response as JSON with the given status code.
// Matches the {"type": ..., "message": ...} body used by the handlers.
func writeJSONError(w http.ResponseWriter, kind, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Type:    kind,
		Message: message,
	})
}
