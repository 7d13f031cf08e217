// Package apiresp writes the JSON envelope every API endpoint speaks:
// a success flag, a human-readable message, and optional payload fields.
package apiresp

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Body is the response envelope. Extra carries endpoint-specific
// payload fields that are flattened into the top-level object.
type Body struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Extra   map[string]any
}

// MarshalJSON flattens Extra into the envelope so clients see
// {"success":true,"message":"...","messages":[...]} rather than a
// nested "extra" object.
func (b Body) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+2)
	for k, v := range b.Extra {
		out[k] = v
	}
	out["success"] = b.Success
	if b.Message != "" {
		out["message"] = b.Message
	}
	return json.Marshal(out)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, status int, message string) {
	write(w, status, Body{Success: true, Message: message})
}

// OKWith writes a success envelope with payload fields.
func OKWith(w http.ResponseWriter, status int, message string, extra map[string]any) {
	write(w, status, Body{Success: true, Message: message, Extra: extra})
}

// Fail writes a failure envelope.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Body{Success: false, Message: message})
}

// ServerError logs the cause and writes a generic 500 envelope. The
// internal error text never reaches the client.
func ServerError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	log.Error(op, zap.Error(err))
	Fail(w, http.StatusInternalServerError, "Internal server error")
}

func write(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}
