package httputil

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error response: {"error": "..."}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ErrorDetail writes a JSON error response with a detail field:
// {"error": "...", "detail": "..."}.
func ErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	JSON(w, status, map[string]string{"error": message, "detail": detail})
}
