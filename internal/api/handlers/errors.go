package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Status line is already sent; nothing left to tell the client
		log.Printf("[HTTP] Failed to encode %d response: %v", statusCode, err)
	}
}

// WriteError writes an ErrorBody; errorType is the machine-readable kind
func WriteError(w http.ResponseWriter, statusCode int, errorType, message string) {
	WriteJSON(w, statusCode, ErrorBody{
		Error:   errorType,
		Message: message,
	})
}
