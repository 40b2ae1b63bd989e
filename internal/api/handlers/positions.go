package handlers

import (
	"delivery-eta-service/internal/adapters/events"
	"delivery-eta-service/internal/api/dto"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/services"
	"errors"
	"net/http"
	"time"
)

type positionPusher interface {
	Push(p ports.RawPosition) error
	Fail(err error) error
}

// PositionHandler feeds raw geolocation events into a session.
type PositionHandler struct {
	Manager *services.SessionManager
	Log     *logger.Logger
}

func (h *PositionHandler) Push(w http.ResponseWriter, r *http.Request) {
	s, err := h.Manager.Get(r.PathValue("id"))
	if err != nil {
		writeError(h.Log, w, r, http.StatusNotFound, "session not found")
		return
	}

	src, ok := s.Source().(positionPusher)
	if !ok {
		writeError(h.Log, w, r, http.StatusConflict, "session does not accept pushed positions")
		return
	}

	var req dto.PositionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	if req.Error != "" {
		if err := src.Fail(errors.New(req.Error)); err != nil {
			writeError(h.Log, w, r, http.StatusConflict, err.Error())
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if req.Coords == nil {
		writeError(h.Log, w, r, http.StatusBadRequest, "coords is required")
		return
	}

	ts := time.Now()
	if req.Timestamp > 0 {
		ts = time.UnixMilli(req.Timestamp)
	}

	err = src.Push(ports.RawPosition{
		Longitude: req.Coords.Longitude,
		Latitude:  req.Coords.Latitude,
		Timestamp: ts,
	})
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
	case errors.Is(err, events.ErrSourceBusy):
		writeError(h.Log, w, r, http.StatusTooManyRequests, err.Error())
	default:
		writeError(h.Log, w, r, http.StatusConflict, err.Error())
	}
}
