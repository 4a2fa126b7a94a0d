package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

// handleHealth always answers 200; an unreachable database only shows up in
// the database field.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	timeout := h.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	database := "connected"
	if err := h.Overlays.Ping(ctx); err != nil {
		h.Log.Warn("database ping failed", zap.Error(err))
		database = "disconnected"
	}

	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:   "healthy",
		Database: database,
		Message:  "API is running",
	})
}
