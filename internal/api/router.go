package api

import (
	"net/http"

	"rental-ops-service/internal/api/handlers"
	"rental-ops-service/internal/ports"
	"rental-ops-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(
	orders ports.OrderRepository,
	fleet ports.FleetRepository,
	geocoder ports.Geocoder,
	events *services.OrderEvents,
	engine *services.RecurrenceEngine,
	planner *services.RoutePlanner,
) http.Handler {
	mux := http.NewServeMux()

	orderHandler := &handlers.OrderHandler{Repo: orders, Geocoder: geocoder, Events: events}
	fleetHandler := &handlers.FleetHandler{Repo: fleet}
	recurrenceHandler := &handlers.RecurrenceHandler{Engine: engine, Geocoder: geocoder}
	routeHandler := &handlers.RouteHandler{Planner: planner}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /orders", orderHandler.Create)
	mux.HandleFunc("GET /orders", orderHandler.List)
	mux.HandleFunc("GET /orders/{id}", orderHandler.Get)
	mux.HandleFunc("PATCH /orders/{id}/status", orderHandler.UpdateStatus)

	mux.HandleFunc("POST /recurrences", recurrenceHandler.Create)
	mux.HandleFunc("POST /recurrences/{id}/cancel", recurrenceHandler.Cancel)
	mux.HandleFunc("POST /recurrences/tick", recurrenceHandler.Tick)

	mux.HandleFunc("POST /routes/optimize", routeHandler.Optimize)

	mux.HandleFunc("GET /fleet/trucks", fleetHandler.ListTrucks)
	mux.HandleFunc("POST /fleet/trucks", fleetHandler.CreateTruck)
	mux.HandleFunc("GET /fleet/truck-types", fleetHandler.ListTruckTypes)
	mux.HandleFunc("POST /fleet/truck-types", fleetHandler.CreateTruckType)
	mux.HandleFunc("GET /fleet/bases", fleetHandler.ListBases)
	mux.HandleFunc("POST /fleet/bases", fleetHandler.CreateBase)
	mux.HandleFunc("GET /fleet/cost-configs", fleetHandler.ListCostConfigs)
	mux.HandleFunc("POST /fleet/cost-configs", fleetHandler.CreateCostConfig)

	return requestIDMiddleware(loggingMiddleware(mux))
}
