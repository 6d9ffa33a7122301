package handlers

import (
	"net/http"
	"time"

	"rental-ops-service/internal/api/dto"
	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/services"
)

// RouteHandler exposes the route optimization endpoint. The computed plan
// is read-only: nothing is persisted unless an operator acts on it.
type RouteHandler struct {
	Planner *services.RoutePlanner
}

func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	account, ok := accountID(w, r)
	if !ok {
		return
	}

	var req dto.OptimizeRouteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	planReq := services.PlanDayRequest{
		AccountID:     account,
		TruckID:       req.TruckID,
		OrderIDs:      req.OrderIDs,
		DepartureTime: req.DepartureTime,
		StartLocation: coordFromPayload(req.StartLocation),
		ServiceTime:   time.Duration(req.ServiceTimeMinutes) * time.Minute,
	}

	route, err := h.Planner.PlanDay(r.Context(), planReq)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeToResponse(route))
}

func routeToResponse(route *domain.OptimizedRoute) dto.OptimizedRouteResponse {
	stops := make([]dto.PlannedStopResponse, 0, len(route.Stops))
	for _, s := range route.Stops {
		var mustDepartBy *time.Time
		if !s.MustDepartBy.IsZero() {
			t := s.MustDepartBy
			mustDepartBy = &t
		}

		stops = append(stops, dto.PlannedStopResponse{
			OrderID:            s.Stop.OrderID,
			ClientName:         s.Stop.ClientName,
			Address:            s.Stop.Address,
			OrderInRoute:       s.OrderInRoute,
			PredictedArrival:   s.PredictedArrival,
			MustDepartBy:       mustDepartBy,
			TravelMinutesSoFar: s.TravelMinutesSoFar,
			LegDistanceMeters:  s.LegDistanceMeters,
			LegDurationSeconds: s.LegDurationSeconds,
			LegQuality:         string(s.LegQuality),
		})
	}

	skipped := make([]dto.SkippedStopResponse, 0, len(route.Skipped))
	for _, s := range route.Skipped {
		skipped = append(skipped, dto.SkippedStopResponse{
			OrderID:    s.OrderID,
			ClientName: s.ClientName,
			Address:    s.Address,
			Reason:     "sem coordenadas",
		})
	}

	return dto.OptimizedRouteResponse{
		BaseDeparture:        route.BaseDeparture,
		Stops:                stops,
		Skipped:              skipped,
		TotalDistanceMeters:  route.TotalDistanceMeters,
		TotalDurationSeconds: route.TotalDurationSeconds,
		TotalCost:            route.TotalCost,
		TotalRevenue:         route.TotalRevenue,
		Profit:               route.Profit,
		Advisory:             route.Advisory,
	}
}
