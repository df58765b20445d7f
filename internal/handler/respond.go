package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, errorResponse{Message: message})
}

// writeServerError logs the cause and replies with an opaque 500.
func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
