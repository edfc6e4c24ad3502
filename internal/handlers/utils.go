package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/findrightpeople/worker/internal/api"
	"github.com/findrightpeople/worker/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, code string, message string) {
	writeJsonResponse(w, httpCode, api.ErrorResponse{Code: code, Message: message})
}

func traceIdFromContext(ctx context.Context) string {
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}
