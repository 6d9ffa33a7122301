package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rental-ops-service/internal/domain"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Kind   domain.OrderKind // empty means both kinds
	Status string           // empty means any status
	Limit  int
}

// Port for persisting orders. Create assigns the per-account, per-kind
// sequential id inside a store transaction so that concurrent creations
// never observe or write the same value.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, accountID, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, accountID uuid.UUID, filter OrderFilter) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, accountID, orderID uuid.UUID, status string) error
	// MarkOverdueRentals flags active rentals whose return date has passed
	// and returns how many were flagged. A nil accountID sweeps every
	// account.
	MarkOverdueRentals(ctx context.Context, accountID *uuid.UUID, now time.Time) (int, error)
}

// MaterializeFunc builds the order a due profile should spawn. It must be
// pure: the repository calls it under the profile's row lock and persists
// the result in the same transaction that advances next_run_date.
type MaterializeFunc func(p *domain.RecurrenceProfile) (*domain.Order, time.Time, error)

// Port for recurrence profiles with transactional read-modify-write
// semantics: the schedule is never advanced without the spawned order being
// persisted, and vice versa.
type RecurrenceRepository interface {
	// CreateWithFirstOrder persists the profile and its first concrete
	// order atomically; both succeed or both fail.
	CreateWithFirstOrder(ctx context.Context, p *domain.RecurrenceProfile, first *domain.Order) error

	Get(ctx context.Context, accountID, profileID uuid.UUID) (*domain.RecurrenceProfile, error)

	// ListDue returns active profiles whose next run date is at or before
	// now. A nil accountID spans all accounts.
	ListDue(ctx context.Context, accountID *uuid.UUID, now time.Time) ([]*domain.RecurrenceProfile, error)

	// Generate re-checks the profile is still due and active under a row
	// lock, invokes materialize, persists the spawned order with a fresh
	// sequential id and advances next_run_date in one transaction.
	// Returns domain.ErrProfileNotDue when another tick got there first.
	Generate(ctx context.Context, accountID, profileID uuid.UUID, now time.Time, materialize MaterializeFunc) (*domain.Order, error)

	// Expire marks the profile expired without generating an order.
	Expire(ctx context.Context, accountID, profileID uuid.UUID) error

	// Cancel is idempotent: cancelling a cancelled profile is a no-op.
	Cancel(ctx context.Context, accountID, profileID uuid.UUID) error
}

// Port for fleet reference data consumed by the cost model and optimizer.
type FleetRepository interface {
	GetTruck(ctx context.Context, accountID, truckID uuid.UUID) (*domain.Truck, error)
	ListTrucks(ctx context.Context, accountID uuid.UUID) ([]*domain.Truck, error)
	CreateTruck(ctx context.Context, truck *domain.Truck) error
	ListTruckTypes(ctx context.Context, accountID uuid.UUID) ([]domain.TruckType, error)
	CreateTruckType(ctx context.Context, tt *domain.TruckType) error
	ListBases(ctx context.Context, accountID uuid.UUID) ([]domain.Base, error)
	CreateBase(ctx context.Context, b *domain.Base) error
	ListCostConfigs(ctx context.Context, accountID uuid.UUID) ([]domain.CostConfig, error)
	CreateCostConfig(ctx context.Context, cfg *domain.CostConfig) error
}
