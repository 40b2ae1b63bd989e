package handlers

import (
	"delivery-eta-service/internal/api/dto"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/services"
	"net/http"
)

// ForecastHandler exposes the current forecast snapshot of a session.
type ForecastHandler struct {
	Manager *services.SessionManager
	Log     *logger.Logger
}

func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, err := h.Manager.Get(id)
	if err != nil {
		writeError(h.Log, w, r, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(h.Log, w, r, http.StatusOK, dto.NewForecastResponse(id, s.Status()))
}
