package utils

import (
	"encoding/json"
	"net/http"

	"testadmin/internal/models"
)

// JSON writes a JSON response with status code
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// OK wraps data in the standard success envelope.
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, models.ApiResponse{Message: message, Data: data})
}

// Error writes the uniform error payload.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, models.ErrorResponse{Code: code, Message: message})
}
