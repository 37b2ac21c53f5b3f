// Package respond centralizes the JSON shape every ecosort endpoint returns.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Body wraps every API response: the HTTP status echoed as code, a short
// human-readable message, and the optional payload.
type Body struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a successful response carrying data.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	writeBody(w, status, Body{Code: status, Message: message, Data: data})
}

// Error writes a failure response; message must already be client-safe.
func Error(w http.ResponseWriter, status int, message string) {
	writeBody(w, status, Body{Code: status, Message: message})
}

func writeBody(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("respond: write body: %v", err)
	}
}
