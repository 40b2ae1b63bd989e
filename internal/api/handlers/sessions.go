package handlers

import (
	"context"
	"delivery-eta-service/internal/adapters/events"
	"delivery-eta-service/internal/api/dto"
	"delivery-eta-service/internal/domain"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/services"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionHandler opens and closes tracking sessions.
// Repo is optional; without it sessions need explicit waypoints.
type SessionHandler struct {
	Manager *services.SessionManager
	Repo    ports.DeliveryRepository
	Log     *logger.Logger
}

func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, errTrailingData) {
			writeError(h.Log, w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(h.Log, w, r, http.StatusBadRequest, "invalid json body")
		return
	}

	d, status, err := h.resolveDelivery(r.Context(), req)
	if err != nil {
		writeError(h.Log, w, r, status, err.Error())
		return
	}

	var initial *domain.Position
	if req.Position != nil {
		p := domain.NewPosition(req.Position.Longitude, req.Position.Latitude, time.Now())
		initial = &p
	}

	s, err := h.Manager.Open(r.Context(), d, events.NewChannelPositionSource(), initial)
	if err != nil {
		h.Log.WithError(err).Error("open session failed")
		writeError(h.Log, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(h.Log, w, r, http.StatusCreated, dto.SessionResponse{
		SessionID:      s.ID,
		DeliveryID:     d.ID,
		VehicleType:    d.Vehicle.String(),
		RoutingProfile: d.Vehicle.RoutingProfile(),
		State:          string(s.Status().State),
		CreatedAt:      s.CreatedAt,
	})
}

func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.Manager.Close(r.PathValue("id")); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			writeError(h.Log, w, r, http.StatusNotFound, "session not found")
			return
		}
		h.Log.WithError(err).Error("close session failed")
		writeError(h.Log, w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Explicit request fields override the stored delivery record.
func (h *SessionHandler) resolveDelivery(ctx context.Context, req dto.OpenSessionRequest) (domain.Delivery, int, error) {
	var d domain.Delivery

	id := strings.TrimSpace(req.DeliveryID)
	if id != "" && h.Repo != nil {
		stored, err := h.Repo.GetDelivery(ctx, id)
		if errors.Is(err, ports.ErrDeliveryNotFound) {
			return d, http.StatusNotFound, errors.New("delivery not found")
		}
		if err != nil {
			h.Log.WithError(err).WithField("delivery_id", id).Error("load delivery failed")
			return d, http.StatusInternalServerError, errors.New("internal server error")
		}
		d = *stored
	}
	d.ID = id

	if req.Pickup != nil {
		d.Pickup = toWaypoint(*req.Pickup, "Pickup")
	}
	if req.Dropoff != nil {
		d.Dropoff = toWaypoint(*req.Dropoff, "Drop-off")
	}
	if req.VehicleType != "" {
		d.Vehicle = domain.ParseVehicleProfile(req.VehicleType)
	}
	if t := strings.TrimSpace(req.Transporter); t != "" {
		d.Transporter = t
	}

	if req.Pickup == nil && req.Dropoff == nil && (id == "" || h.Repo == nil) {
		return d, http.StatusBadRequest, errors.New("pickup and dropoff, or a known delivery_id, are required")
	}
	return d, http.StatusOK, nil
}

func toWaypoint(w dto.WaypointRequest, fallback string) domain.Waypoint {
	label := strings.TrimSpace(w.Label)
	if label == "" {
		label = fallback
	}
	return domain.Waypoint{
		Position: domain.NewPosition(w.Coordinates[0], w.Coordinates[1], time.Time{}),
		Label:    label,
	}
}
