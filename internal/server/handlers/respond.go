package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/3leaps/nimbusview/internal/observability"
)

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.ServerLogger.Error("failed to encode response", zap.Error(err))
	}
}
