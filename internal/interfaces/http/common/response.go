package common

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.SugaredLogger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Warnw("failed to encode JSON response", "error", err)
	}
}

// WriteError writes {"error": message}.
func WriteError(logger *zap.SugaredLogger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, ErrorResponse{Error: message})
}

// SetCache sets a public Cache-Control max-age.
func SetCache(w http.ResponseWriter, maxAge int) {
	if maxAge <= 0 {
		w.Header().Set("Cache-Control", "no-store")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
}
