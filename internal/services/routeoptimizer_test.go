package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
)

// mockDirections resolves legs from a fixed pair table keyed by rounded
// coordinates. Pairs absent from the table fail, exercising degradation.
type mockDirections struct {
	m     map[string]ports.DistanceResult
	calls int
}

func key(a, b domain.Coordinates) string {
	return fmt.Sprintf("%.3f,%.3f|%.3f,%.3f", a.Lon, a.Lat, b.Lon, b.Lat)
}

func (p *mockDirections) put(from, to domain.Coordinates, meters, seconds int) {
	if p.m == nil {
		p.m = map[string]ports.DistanceResult{}
	}
	p.m[key(from, to)] = ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}
}

func (p *mockDirections) Route(ctx context.Context, origin, destination domain.Coordinates) (ports.DistanceResult, error) {
	p.calls++
	r, ok := p.m[key(origin, destination)]
	if !ok {
		return ports.DistanceResult{}, errors.New("no route data")
	}
	return r, nil
}

func coordPtr(lon, lat float64) *domain.Coordinates {
	return &domain.Coordinates{Lon: lon, Lat: lat}
}

func TestOptimizeRouteSequencing(t *testing.T) {
	base := domain.Coordinates{Lon: -46.600, Lat: -23.500}
	a := coordPtr(-46.610, -23.510)
	b := coordPtr(-46.620, -23.520)
	c := coordPtr(-46.630, -23.530)

	provider := &mockDirections{}
	provider.put(base, *a, 1000, 300)
	provider.put(base, *b, 2000, 600)
	provider.put(base, *c, 1500, 450)
	provider.put(*a, *b, 800, 240)
	provider.put(*a, *c, 700, 210)
	provider.put(*c, *b, 900, 270)
	provider.put(*b, *c, 900, 270)
	provider.put(*c, *a, 700, 210)
	provider.put(*b, *a, 800, 240)

	depart := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	service := 10 * time.Minute

	stops := []domain.Stop{
		{OrderID: uuid.New(), ClientName: "Alfa", Coord: a, ServiceTime: service, Value: decimal.NewFromInt(300)},
		{OrderID: uuid.New(), ClientName: "Beta", Coord: b, ServiceTime: service, Value: decimal.NewFromInt(200)},
		{OrderID: uuid.New(), ClientName: "Gama", Coord: c, ServiceTime: service, Value: decimal.NewFromInt(100)},
	}

	req := OptimizeRequest{
		StartLocation: base,
		DepartureTime: depart,
		Stops:         stops,
		CostPerKm:     decimal.NewFromInt(2),
	}

	route, err := OptimizeRoute(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(route.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(route.Stops))
	}

	// Greedy by duration: base->A (300s), then A->C (210s), then C->B (270s).
	if route.Stops[0].Stop.ClientName != "Alfa" ||
		route.Stops[1].Stop.ClientName != "Gama" ||
		route.Stops[2].Stop.ClientName != "Beta" {
		t.Fatalf("unexpected sequence: %s, %s, %s",
			route.Stops[0].Stop.ClientName, route.Stops[1].Stop.ClientName, route.Stops[2].Stop.ClientName)
	}

	for i, ps := range route.Stops {
		if ps.OrderInRoute != i+1 {
			t.Fatalf("stop %d has OrderInRoute %d", i, ps.OrderInRoute)
		}
		if ps.LegQuality != domain.LegMeasured {
			t.Fatalf("stop %d quality = %s, want measured", i, ps.LegQuality)
		}
	}

	// Arrival propagation: 08:00 + 300s travel, then +10min service each hop.
	wantFirst := depart.Add(300 * time.Second)
	if !route.Stops[0].PredictedArrival.Equal(wantFirst) {
		t.Fatalf("first arrival = %v, want %v", route.Stops[0].PredictedArrival, wantFirst)
	}
	wantSecond := wantFirst.Add(service).Add(210 * time.Second)
	if !route.Stops[1].PredictedArrival.Equal(wantSecond) {
		t.Fatalf("second arrival = %v, want %v", route.Stops[1].PredictedArrival, wantSecond)
	}

	// Latest departures: stop i must be left by arrival(i+1) - travel(i->i+1).
	wantDepart := wantSecond.Add(-210 * time.Second)
	if !route.Stops[0].MustDepartBy.Equal(wantDepart) {
		t.Fatalf("first MustDepartBy = %v, want %v", route.Stops[0].MustDepartBy, wantDepart)
	}
	if !route.Stops[2].MustDepartBy.IsZero() {
		t.Fatalf("final stop MustDepartBy should be zero, got %v", route.Stops[2].MustDepartBy)
	}

	if route.TotalDistanceMeters != 1000+700+900 {
		t.Fatalf("total distance = %d, want 2600", route.TotalDistanceMeters)
	}
	if route.TotalDurationSeconds != 300+210+270 {
		t.Fatalf("total duration = %d, want 780", route.TotalDurationSeconds)
	}

	// Cost = 2.6 km * 2 (round trip) * 2 per km = 10.40.
	if want := decimal.RequireFromString("10.40"); !route.TotalCost.Equal(want) {
		t.Fatalf("total cost = %s, want %s", route.TotalCost, want)
	}
	if want := decimal.NewFromInt(600); !route.TotalRevenue.Equal(want) {
		t.Fatalf("total revenue = %s, want %s", route.TotalRevenue, want)
	}
	if !route.Profit.Equal(route.TotalRevenue.Sub(route.TotalCost)) {
		t.Fatalf("profit = %s, want revenue - cost = %s", route.Profit, route.TotalRevenue.Sub(route.TotalCost))
	}
}

func TestOptimizeRouteDegradesFailedLegs(t *testing.T) {
	base := domain.Coordinates{Lon: -46.600, Lat: -23.500}
	a := coordPtr(-46.700, -23.500)

	// Provider knows no pairs at all: every leg must be estimated, and the
	// plan must still come out rather than erroring.
	provider := &mockDirections{}

	req := OptimizeRequest{
		StartLocation: base,
		DepartureTime: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		Stops: []domain.Stop{
			{OrderID: uuid.New(), ClientName: "Alfa", Coord: a, Value: decimal.NewFromInt(100)},
		},
		CostPerKm: decimal.NewFromInt(1),
	}

	route, err := OptimizeRoute(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route.Stops) != 1 {
		t.Fatalf("expected 1 stop, got %d", len(route.Stops))
	}
	if route.Stops[0].LegQuality != domain.LegEstimated {
		t.Fatalf("leg quality = %s, want estimated", route.Stops[0].LegQuality)
	}
	if route.Stops[0].LegDistanceMeters <= 0 || route.Stops[0].LegDurationSeconds <= 0 {
		t.Fatalf("estimated leg has no metrics: %+v", route.Stops[0])
	}
	if !route.Profit.Equal(route.TotalRevenue.Sub(route.TotalCost)) {
		t.Fatalf("profit invariant violated on degraded plan")
	}
}

func TestOptimizeRouteSkipsStopsWithoutCoordinates(t *testing.T) {
	base := domain.Coordinates{Lon: -46.600, Lat: -23.500}
	a := coordPtr(-46.610, -23.510)

	provider := &mockDirections{}
	provider.put(base, *a, 1000, 300)

	req := OptimizeRequest{
		StartLocation: base,
		DepartureTime: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
		Stops: []domain.Stop{
			{OrderID: uuid.New(), ClientName: "SemEndereco", Coord: nil, Value: decimal.NewFromInt(50)},
			{OrderID: uuid.New(), ClientName: "Alfa", Coord: a, Value: decimal.NewFromInt(100)},
		},
	}

	route, err := OptimizeRoute(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route.Stops) != 1 || route.Stops[0].Stop.ClientName != "Alfa" {
		t.Fatalf("expected only the routable stop to be planned")
	}
	if len(route.Skipped) != 1 || route.Skipped[0].ClientName != "SemEndereco" {
		t.Fatalf("expected the coordinate-less stop in Skipped")
	}
	// Skipped stops contribute no revenue; they were never planned.
	if !route.TotalRevenue.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("revenue = %s, want 100", route.TotalRevenue)
	}
}

func TestOptimizeRouteEmpty(t *testing.T) {
	route, err := OptimizeRoute(context.Background(), OptimizeRequest{
		DepartureTime: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}, &mockDirections{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route.Stops) != 0 || route.TotalDistanceMeters != 0 {
		t.Fatalf("expected empty plan, got %+v", route)
	}
}
