package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Base is a named fixed starting location for routes (depot).
type Base struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
	Address   string
	Coord     *Coordinates
}

// TruckType is a catalog entry mapping a truck type name to its identity.
// Trucks store the type by name; cost configs reference the type by id.
type TruckType struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Name      string
}

// Truck is a fleet vehicle. TypeName references the truck-type catalog by
// name; a name absent from the catalog resolves to no cost config, not an
// error.
type Truck struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Plate     string
	TypeName  string
	BaseID    *uuid.UUID
	CreatedAt time.Time
}

// CostConfig is a per-kilometer rate for a truck type, optionally scoped to
// a base of origin. Lookup uses two-level fallback: exact base+type match
// first, then any config for the type, then zero.
type CostConfig struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	BaseID      *uuid.UUID
	TruckTypeID uuid.UUID
	Value       decimal.Decimal // currency per kilometer
}
