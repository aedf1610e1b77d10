package respond

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/storefront/internal/logging"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success or informational response using the common envelope.
func JSON(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	write(w, r, Envelope{Code: status, Message: message, Data: data})
}

// Error writes an error response with the shared envelope structure.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, Envelope{Code: status, Message: message})
}

// write reports encode failures through the request's logger; the status line
// has already been sent by then.
func write(w http.ResponseWriter, r *http.Request, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(payload.Code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		ctx := r.Context()
		logging.FromContext(ctx).Error(ctx, "encode response failed",
			"status", payload.Code, "path", r.URL.Path, "error", err)
	}
}
