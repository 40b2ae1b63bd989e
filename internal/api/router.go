package api

import (
	"delivery-eta-service/internal/api/handlers"
	"delivery-eta-service/internal/platform/logger"
	"delivery-eta-service/internal/ports"
	"delivery-eta-service/internal/services"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// repo may be nil when no delivery store is configured.
func NewRouter(manager *services.SessionManager, repo ports.DeliveryRepository, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	log = log.WithComponent("api")

	healthHandler := &handlers.HealthHandler{Sessions: manager, Log: log}
	sessionHandler := &handlers.SessionHandler{Manager: manager, Repo: repo, Log: log}
	positionHandler := &handlers.PositionHandler{Manager: manager, Log: log}
	forecastHandler := &handlers.ForecastHandler{Manager: manager, Log: log}

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /sessions", sessionHandler.Open)
	mux.HandleFunc("DELETE /sessions/{id}", sessionHandler.Close)
	mux.HandleFunc("POST /sessions/{id}/positions", positionHandler.Push)
	mux.HandleFunc("GET /sessions/{id}/forecast", forecastHandler.Get)

	return loggingMiddleware(log, mux)
}
