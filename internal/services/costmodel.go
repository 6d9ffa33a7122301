package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rental-ops-service/internal/domain"
)

// ResolveCostPerKm picks the per-kilometer rate for a truck type leaving a
// base. Two-level fallback: an exact base+type match wins; otherwise any
// config for the type; otherwise zero. Zero is the documented sentinel, not
// an error: a fleet without cost configs simply plans at zero cost.
//
// In the fallback step a base-agnostic config outranks one bound to a
// different base, so a truck leaving base B never inherits base A's rate
// when a general rate exists.
func ResolveCostPerKm(configs []domain.CostConfig, baseID *uuid.UUID, truckTypeID uuid.UUID) decimal.Decimal {
	if baseID != nil {
		for _, c := range configs {
			if c.TruckTypeID != truckTypeID {
				continue
			}
			if c.BaseID != nil && *c.BaseID == *baseID {
				return c.Value
			}
		}
		for _, c := range configs {
			if c.TruckTypeID == truckTypeID && c.BaseID == nil {
				return c.Value
			}
		}
	}

	for _, c := range configs {
		if c.TruckTypeID == truckTypeID {
			return c.Value
		}
	}

	return decimal.Zero
}

// TruckTypeID translates a truck's declared type name through the catalog.
// A name absent from the catalog resolves to uuid.Nil, which in turn
// matches no cost config. Missing catalog entries degrade to zero cost
// rather than erroring.
func TruckTypeID(catalog []domain.TruckType, typeName string) uuid.UUID {
	for _, t := range catalog {
		if t.Name == typeName {
			return t.ID
		}
	}
	return uuid.Nil
}

// TruckCostPerKm resolves the rate for a concrete truck: catalog lookup of
// its type name, then config fallback from its home base.
func TruckCostPerKm(configs []domain.CostConfig, catalog []domain.TruckType, truck *domain.Truck) decimal.Decimal {
	if truck == nil {
		return decimal.Zero
	}

	typeID := TruckTypeID(catalog, truck.TypeName)
	if typeID == uuid.Nil {
		return decimal.Zero
	}

	return ResolveCostPerKm(configs, truck.BaseID, typeID)
}
