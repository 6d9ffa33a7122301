package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-ops-service/internal/domain"
)

type fakeFleet struct {
	trucks  map[uuid.UUID]*domain.Truck
	types   []domain.TruckType
	bases   []domain.Base
	configs []domain.CostConfig
}

func (f *fakeFleet) GetTruck(ctx context.Context, accountID, truckID uuid.UUID) (*domain.Truck, error) {
	t, ok := f.trucks[truckID]
	if !ok || t.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeFleet) ListTrucks(ctx context.Context, accountID uuid.UUID) ([]*domain.Truck, error) {
	var out []*domain.Truck
	for _, t := range f.trucks {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeFleet) CreateTruck(ctx context.Context, truck *domain.Truck) error {
	if f.trucks == nil {
		f.trucks = map[uuid.UUID]*domain.Truck{}
	}
	f.trucks[truck.ID] = truck
	return nil
}

func (f *fakeFleet) ListTruckTypes(ctx context.Context, accountID uuid.UUID) ([]domain.TruckType, error) {
	return f.types, nil
}

func (f *fakeFleet) CreateTruckType(ctx context.Context, tt *domain.TruckType) error {
	f.types = append(f.types, *tt)
	return nil
}

func (f *fakeFleet) ListBases(ctx context.Context, accountID uuid.UUID) ([]domain.Base, error) {
	return f.bases, nil
}

func (f *fakeFleet) CreateBase(ctx context.Context, b *domain.Base) error {
	f.bases = append(f.bases, *b)
	return nil
}

func (f *fakeFleet) ListCostConfigs(ctx context.Context, accountID uuid.UUID) ([]domain.CostConfig, error) {
	return f.configs, nil
}

func (f *fakeFleet) CreateCostConfig(ctx context.Context, cfg *domain.CostConfig) error {
	f.configs = append(f.configs, *cfg)
	return nil
}

func TestPlanDay(t *testing.T) {
	accountID := uuid.New()
	orders := newFakeOrders()

	baseID := uuid.New()
	typeID := uuid.New()
	truckID := uuid.New()
	baseCoord := domain.Coordinates{Lon: -46.600, Lat: -23.500}

	fleet := &fakeFleet{
		trucks: map[uuid.UUID]*domain.Truck{
			truckID: {ID: truckID, AccountID: accountID, Plate: "ABC1D23", TypeName: "Basculante", BaseID: &baseID},
		},
		types: []domain.TruckType{{ID: typeID, AccountID: accountID, Name: "Basculante"}},
		bases: []domain.Base{{ID: baseID, AccountID: accountID, Name: "Matriz", Coord: &baseCoord}},
		configs: []domain.CostConfig{
			{AccountID: accountID, BaseID: &baseID, TruckTypeID: typeID, Value: decimal.NewFromInt(3)},
		},
	}

	a := coordPtr(-46.610, -23.510)
	b := coordPtr(-46.620, -23.520)

	o1 := testDraft(accountID)
	o1.DestinationCoord = a
	o1.Status = domain.RentalPending
	if err := orders.Create(context.Background(), o1); err != nil {
		t.Fatal(err)
	}
	o2 := testDraft(accountID)
	o2.ClientName = "Construtora Beta"
	o2.DestinationCoord = b
	o2.Status = domain.RentalPending
	o2.Value = decimal.NewFromInt(200)
	o2.AdditionalCosts = []domain.AdditionalCost{{Name: "Taxa de descarte", Value: decimal.NewFromInt(50)}}
	if err := orders.Create(context.Background(), o2); err != nil {
		t.Fatal(err)
	}

	provider := &mockDirections{}
	provider.put(baseCoord, *a, 1000, 300)
	provider.put(baseCoord, *b, 2000, 600)
	provider.put(*a, *b, 800, 240)
	provider.put(*b, *a, 800, 240)

	planner := NewRoutePlanner(orders, fleet, provider, NewAnnotator(&stubWeather{fc: domain.Forecast{Condition: "céu limpo", TempC: 27}}, nil), nil)

	route, err := planner.PlanDay(context.Background(), PlanDayRequest{
		AccountID:     accountID,
		TruckID:       truckID,
		OrderIDs:      []uuid.UUID{o1.ID, o2.ID},
		DepartureTime: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(route.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(route.Stops))
	}
	if route.Stops[0].Stop.ClientName != "Construtora Alfa" {
		t.Fatalf("first stop = %q, want nearest client", route.Stops[0].Stop.ClientName)
	}

	// Revenue includes additional costs: 350 + 200 + 50.
	if want := decimal.NewFromInt(600); !route.TotalRevenue.Equal(want) {
		t.Fatalf("revenue = %s, want %s", route.TotalRevenue, want)
	}
	// Cost: 1.8 km * 2 * 3 = 10.80 from the base+type config.
	if want := decimal.RequireFromString("10.80"); !route.TotalCost.Equal(want) {
		t.Fatalf("cost = %s, want %s", route.TotalCost, want)
	}
	if route.Advisory == "" {
		t.Fatal("expected a weather advisory on the plan")
	}
}

func TestPlanDayUnknownTruck(t *testing.T) {
	accountID := uuid.New()
	orders := newFakeOrders()
	o := testDraft(accountID)
	o.Status = domain.RentalPending
	if err := orders.Create(context.Background(), o); err != nil {
		t.Fatal(err)
	}

	planner := NewRoutePlanner(orders, &fakeFleet{}, &mockDirections{}, nil, nil)
	_, err := planner.PlanDay(context.Background(), PlanDayRequest{
		AccountID:     accountID,
		TruckID:       uuid.New(),
		OrderIDs:      []uuid.UUID{o.ID},
		DepartureTime: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})
	if err == nil {
		t.Fatal("expected error for unknown truck")
	}
}

func TestPlanDayMissingStartIsValidationError(t *testing.T) {
	accountID := uuid.New()
	orders := newFakeOrders()
	o := testDraft(accountID)
	o.DestinationCoord = coordPtr(-46.610, -23.510)
	o.Status = domain.RentalPending
	if err := orders.Create(context.Background(), o); err != nil {
		t.Fatal(err)
	}

	// The truck has a home base on record but the base was never geocoded.
	baseID := uuid.New()
	truckID := uuid.New()
	fleet := &fakeFleet{
		trucks: map[uuid.UUID]*domain.Truck{
			truckID: {ID: truckID, AccountID: accountID, Plate: "ABC1D23", TypeName: "Basculante", BaseID: &baseID},
		},
		bases: []domain.Base{{ID: baseID, AccountID: accountID, Name: "Matriz"}},
	}

	planner := NewRoutePlanner(orders, fleet, &mockDirections{}, nil, nil)
	_, err := planner.PlanDay(context.Background(), PlanDayRequest{
		AccountID:     accountID,
		TruckID:       truckID,
		OrderIDs:      []uuid.UUID{o.ID},
		DepartureTime: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
	})

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want a validation error for the missing start location", err)
	}
}
