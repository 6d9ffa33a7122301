package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-ops-service/internal/domain"
)

func TestResolveCostPerKm(t *testing.T) {
	baseA := uuid.New()
	baseB := uuid.New()
	typeX := uuid.New()
	typeY := uuid.New()

	configs := []domain.CostConfig{
		{BaseID: &baseA, TruckTypeID: typeX, Value: decimal.NewFromInt(5)},
		{BaseID: nil, TruckTypeID: typeX, Value: decimal.NewFromInt(3)},
	}

	got := ResolveCostPerKm(configs, &baseA, typeX)
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("exact base match = %s, want 5", got)
	}

	got = ResolveCostPerKm(configs, &baseB, typeX)
	if !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("type-only fallback = %s, want 3", got)
	}

	got = ResolveCostPerKm(configs, nil, typeX)
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("nil base takes first type match = %s, want 5", got)
	}

	got = ResolveCostPerKm(configs, &baseB, typeY)
	if !got.IsZero() {
		t.Fatalf("unknown type = %s, want 0", got)
	}

	got = ResolveCostPerKm(nil, &baseA, typeX)
	if !got.IsZero() {
		t.Fatalf("empty configs = %s, want 0", got)
	}

	// With no base-agnostic config the rate of another base is still better
	// than zero: last-resort match ignores the base entirely.
	onlyA := []domain.CostConfig{
		{BaseID: &baseA, TruckTypeID: typeX, Value: decimal.NewFromInt(5)},
	}
	got = ResolveCostPerKm(onlyA, &baseB, typeX)
	if !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("last-resort cross-base match = %s, want 5", got)
	}
}

func TestTruckCostPerKm(t *testing.T) {
	accountID := uuid.New()
	baseA := uuid.New()
	typeX := uuid.New()

	catalog := []domain.TruckType{
		{ID: typeX, AccountID: accountID, Name: "Poliguindaste"},
	}
	configs := []domain.CostConfig{
		{BaseID: &baseA, TruckTypeID: typeX, Value: decimal.RequireFromString("4.50")},
	}

	truck := &domain.Truck{AccountID: accountID, Plate: "ABC1D23", TypeName: "Poliguindaste", BaseID: &baseA}
	if got := TruckCostPerKm(configs, catalog, truck); !got.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("resolved rate = %s, want 4.50", got)
	}

	// A type name missing from the catalog is not an error; it resolves
	// to no cost config.
	truck.TypeName = "Desconhecido"
	if got := TruckCostPerKm(configs, catalog, truck); !got.IsZero() {
		t.Fatalf("unknown type name = %s, want 0", got)
	}

	if got := TruckCostPerKm(configs, catalog, nil); !got.IsZero() {
		t.Fatalf("nil truck = %s, want 0", got)
	}
}
