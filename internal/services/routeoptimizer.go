package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/ports"
)

// fallbackSpeedKmh is the assumed road speed for straight-line leg
// estimates when the directions provider is unavailable.
const fallbackSpeedKmh = 40.0

// roundTripFactor doubles planned distance for costing. The factor is
// applied uniformly to every leg, approximating the return-to-base legs the
// plan itself does not model.
var roundTripFactor = decimal.NewFromInt(2)

// OptimizeRequest describes one driver's day of unscheduled stops.
type OptimizeRequest struct {
	StartLocation domain.Coordinates
	DepartureTime time.Time
	Stops         []domain.Stop

	// CostPerKm is the resolved fleet rate (see ResolveCostPerKm).
	CostPerKm decimal.Decimal
}

// OptimizeRoute sequences stops using greedy nearest-feasible-next ordering
// by travel duration, with ties broken by stop input order. It is a
// heuristic scheduler, not a TSP solver; it minimizes immediate travel
// duration at each step and does not attempt global optimization.
//
// The computation is read-only: it never mutates orders and persists
// nothing. A failed directions lookup degrades the affected leg to a
// straight-line estimate instead of aborting the plan. Stops without
// coordinates are excluded up front and reported in Skipped.
func OptimizeRoute(ctx context.Context, req OptimizeRequest, provider ports.DirectionsProvider) (*domain.OptimizedRoute, error) {
	if req.DepartureTime.IsZero() {
		return nil, domain.NewValidationError("departureTime", "must be set")
	}

	route := &domain.OptimizedRoute{
		BaseDeparture: req.DepartureTime,
		Stops:         []domain.PlannedStop{},
		TotalCost:     decimal.Zero,
		TotalRevenue:  decimal.Zero,
		Profit:        decimal.Zero,
	}

	// The optimizer does not geocode; unroutable stops are set aside.
	remaining := make([]domain.Stop, 0, len(req.Stops))
	for _, s := range req.Stops {
		if s.Coord == nil {
			route.Skipped = append(route.Skipped, s)
			continue
		}
		remaining = append(remaining, s)
	}

	if len(remaining) == 0 {
		return route, nil
	}

	current := req.StartLocation
	clock := req.DepartureTime
	travelSoFar := 0

	for len(remaining) > 0 {
		legs := lookupLegs(ctx, provider, current, remaining)

		// Select next stop by minimum travel duration (greedy step).
		// Iterating in input order and replacing only on strictly
		// smaller durations keeps ties stable.
		best := 0
		for i := 1; i < len(legs); i++ {
			if legs[i].result.DurationSeconds < legs[best].result.DurationSeconds {
				best = i
			}
		}

		stop := remaining[best]
		leg := legs[best]
		travel := time.Duration(leg.result.DurationSeconds) * time.Second

		arrival := clock.Add(travel)
		travelSoFar += leg.result.DurationSeconds

		route.Stops = append(route.Stops, domain.PlannedStop{
			Stop:               stop,
			OrderInRoute:       len(route.Stops) + 1,
			PredictedArrival:   arrival,
			TravelMinutesSoFar: travelSoFar / 60,
			LegDistanceMeters:  leg.result.DistanceMeters,
			LegDurationSeconds: leg.result.DurationSeconds,
			LegQuality:         leg.quality,
		})

		route.TotalDistanceMeters += leg.result.DistanceMeters
		route.TotalDurationSeconds += leg.result.DurationSeconds
		route.TotalRevenue = route.TotalRevenue.Add(stop.Value)

		clock = arrival.Add(stop.ServiceTime)
		current = *stop.Coord
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	// Backfill each stop's latest departure: arriving on time at stop i+1
	// means leaving stop i no later than arrival(i+1) minus the leg's
	// travel time. The final stop has no onward leg.
	for i := 0; i < len(route.Stops)-1; i++ {
		next := route.Stops[i+1]
		route.Stops[i].MustDepartBy = next.PredictedArrival.Add(-time.Duration(next.LegDurationSeconds) * time.Second)
	}

	km := decimal.NewFromFloat(float64(route.TotalDistanceMeters) / 1000.0)
	route.TotalCost = km.Mul(roundTripFactor).Mul(req.CostPerKm).Round(2)
	route.Profit = route.TotalRevenue.Sub(route.TotalCost)

	return route, nil
}

type legCandidate struct {
	result  ports.DistanceResult
	quality domain.LegQuality
}

// lookupLegs resolves travel metrics from the current location to every
// remaining stop, preferring a single matrix call, then per-leg calls, and
// finally straight-line estimates for legs the provider could not serve.
func lookupLegs(ctx context.Context, provider ports.DirectionsProvider, from domain.Coordinates, stops []domain.Stop) []legCandidate {
	legs := make([]legCandidate, len(stops))
	resolved := make([]bool, len(stops))

	if mp, ok := provider.(ports.DirectionsMatrixProvider); ok {
		dests := make([]domain.Coordinates, len(stops))
		for i, s := range stops {
			dests[i] = *s.Coord
		}

		results, err := mp.Routes(ctx, from, dests)
		if err == nil && len(results) == len(stops) {
			for i, r := range results {
				legs[i] = legCandidate{result: r, quality: domain.LegMeasured}
				resolved[i] = true
			}
			return legs
		}
		if err != nil {
			logger.L.Warnw("directions matrix failed, falling back per leg", "err", err)
		}
	}

	for i, s := range stops {
		if resolved[i] {
			continue
		}

		if provider != nil {
			r, err := provider.Route(ctx, from, *s.Coord)
			if err == nil {
				legs[i] = legCandidate{result: r, quality: domain.LegMeasured}
				continue
			}
			if !errors.Is(err, context.Canceled) {
				logger.L.Warnw("directions lookup failed, estimating leg", "order_id", s.OrderID, "err", err)
			}
		}

		legs[i] = legCandidate{result: estimateLeg(from, *s.Coord), quality: domain.LegEstimated}
	}

	return legs
}

// estimateLeg produces a straight-line fallback at an assumed road speed.
func estimateLeg(from, to domain.Coordinates) ports.DistanceResult {
	meters := from.StraightLineMeters(to)
	seconds := meters / (fallbackSpeedKmh * 1000 / 3600)

	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(meters)),
		DurationSeconds: int(math.Round(seconds)),
	}
}
