package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// defaultServiceTime is assumed per stop when the caller does not override
// it (container drop-off or swap at the client).
const defaultServiceTime = 15 * time.Minute

// RoutePlanner orchestrates a day plan for one driver: it loads the selected
// orders and fleet reference data, resolves the per-km rate, sequences the
// stops and attaches the advisory.
type RoutePlanner struct {
	orders    ports.OrderRepository
	fleet     ports.FleetRepository
	provider  ports.DirectionsProvider
	annotator *Annotator
	log       *logger.Logger
}

func NewRoutePlanner(
	orders ports.OrderRepository,
	fleet ports.FleetRepository,
	provider ports.DirectionsProvider,
	annotator *Annotator,
	log *logger.Logger,
) *RoutePlanner {
	if log == nil {
		log = logger.L
	}
	return &RoutePlanner{
		orders:    orders,
		fleet:     fleet,
		provider:  provider,
		annotator: annotator,
		log:       log,
	}
}

// PlanDayRequest selects the stops and the truck for one optimization run.
type PlanDayRequest struct {
	AccountID     uuid.UUID
	TruckID       uuid.UUID
	OrderIDs      []uuid.UUID
	DepartureTime time.Time

	// StartLocation overrides the truck's base as the route origin.
	StartLocation *domain.Coordinates
	ServiceTime   time.Duration
}

type fleetSnapshot struct {
	truck   *domain.Truck
	types   []domain.TruckType
	bases   []domain.Base
	configs []domain.CostConfig
}

// PlanDay produces a read-only optimized route. Nothing is persisted; the
// surrounding application decides what to do with the plan.
func (rp *RoutePlanner) PlanDay(ctx context.Context, req PlanDayRequest) (_ *domain.OptimizedRoute, err error) {
	defer obs.Time(ctx, "routes.PlanDay")(&err)

	if len(req.OrderIDs) == 0 {
		return nil, domain.NewValidationError("orderIds", "must be non-empty")
	}
	if req.DepartureTime.IsZero() {
		return nil, domain.NewValidationError("departureTime", "must be set")
	}
	serviceTime := req.ServiceTime
	if serviceTime <= 0 {
		serviceTime = defaultServiceTime
	}

	// Orders and fleet reference data are independent reads; fetch them
	// concurrently so the static data is ready by the time sequencing
	// needs the cost rate.
	var (
		wg       sync.WaitGroup
		stops    []domain.Stop
		stopsErr error
		snap     fleetSnapshot
		fleetErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		stops, stopsErr = rp.loadStops(ctx, req.AccountID, req.OrderIDs, serviceTime)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap, fleetErr = rp.loadFleet(ctx, req.AccountID, req.TruckID)
	}()

	wg.Wait()

	if stopsErr != nil {
		return nil, fmt.Errorf("plan day: %w", stopsErr)
	}
	if fleetErr != nil {
		return nil, fmt.Errorf("plan day: %w", fleetErr)
	}

	start, err := rp.resolveStart(req, snap)
	if err != nil {
		return nil, fmt.Errorf("plan day: %w", err)
	}

	costPerKm := TruckCostPerKm(snap.configs, snap.types, snap.truck)
	if costPerKm.IsZero() {
		rp.log.Infow("no cost config for truck, planning at zero cost",
			"truck_id", req.TruckID, "type", snap.truck.TypeName)
	}

	route, err := OptimizeRoute(ctx, OptimizeRequest{
		StartLocation: start,
		DepartureTime: req.DepartureTime,
		Stops:         stops,
		CostPerKm:     costPerKm,
	}, rp.provider)
	if err != nil {
		return nil, fmt.Errorf("plan day: optimize: %w", err)
	}

	if rp.annotator != nil {
		route.Advisory = rp.annotator.Annotate(ctx, route)
	}

	return route, nil
}

// loadStops turns the selected orders into routing stops. Orders without a
// destination coordinate still become stops; the optimizer reports them in
// Skipped rather than failing the plan.
func (rp *RoutePlanner) loadStops(ctx context.Context, accountID uuid.UUID, orderIDs []uuid.UUID, serviceTime time.Duration) ([]domain.Stop, error) {
	stops := make([]domain.Stop, 0, len(orderIDs))
	seen := make(map[uuid.UUID]struct{}, len(orderIDs))

	for _, id := range orderIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		order, err := rp.orders.Get(ctx, accountID, id)
		if err != nil {
			return nil, fmt.Errorf("load stop order %s: %w", id, err)
		}

		value := order.Value
		for _, c := range order.AdditionalCosts {
			value = value.Add(c.Value)
		}

		stops = append(stops, domain.Stop{
			OrderID:       order.ID,
			ClientName:    order.ClientName,
			Address:       order.DestinationAddress,
			Coord:         order.DestinationCoord,
			ServiceTime:   serviceTime,
			Value:         value,
			IsEntryOrExit: order.Kind == domain.KindRental,
		})
	}

	return stops, nil
}

func (rp *RoutePlanner) loadFleet(ctx context.Context, accountID, truckID uuid.UUID) (fleetSnapshot, error) {
	var snap fleetSnapshot

	truck, err := rp.fleet.GetTruck(ctx, accountID, truckID)
	if err != nil {
		return snap, fmt.Errorf("load truck %s: %w", truckID, err)
	}
	snap.truck = truck

	if snap.types, err = rp.fleet.ListTruckTypes(ctx, accountID); err != nil {
		return snap, fmt.Errorf("load truck types: %w", err)
	}
	if snap.bases, err = rp.fleet.ListBases(ctx, accountID); err != nil {
		return snap, fmt.Errorf("load bases: %w", err)
	}
	if snap.configs, err = rp.fleet.ListCostConfigs(ctx, accountID); err != nil {
		return snap, fmt.Errorf("load cost configs: %w", err)
	}

	return snap, nil
}

// resolveStart picks the route origin: explicit override first, then the
// coordinates of the truck's home base.
func (rp *RoutePlanner) resolveStart(req PlanDayRequest, snap fleetSnapshot) (domain.Coordinates, error) {
	if req.StartLocation != nil {
		return *req.StartLocation, nil
	}

	if snap.truck.BaseID != nil {
		for _, b := range snap.bases {
			if b.ID == *snap.truck.BaseID && b.Coord != nil {
				return *b.Coord, nil
			}
		}
	}

	// Caller-fixable: pass startLocation or geocode the truck's base.
	return domain.Coordinates{}, domain.NewValidationError("startLocation", "truck has no geocoded base and no override was given")
}
