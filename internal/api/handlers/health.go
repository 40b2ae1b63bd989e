package handlers

import (
	"delivery-eta-service/internal/platform/logger"
	"net/http"
)

type sessionCounter interface {
	Len() int
}

// HealthHandler provides a minimal liveness check endpoint.
type HealthHandler struct {
	Sessions sessionCounter
	Log      *logger.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := map[string]any{"status": "ok"}
	if h.Sessions != nil {
		res["sessions"] = h.Sessions.Len()
	}
	writeJSON(h.Log, w, r, http.StatusOK, res)
}
