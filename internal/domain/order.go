package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderKind distinguishes the two order flavors the business runs:
// dumpster rentals (equipment left at the client) and operations
// (point-to-point hauling jobs).
type OrderKind string

const (
	KindRental    OrderKind = "rental"
	KindOperation OrderKind = "operation"
)

func (k OrderKind) Valid() bool {
	return k == KindRental || k == KindOperation
}

// BillingType mirrors how the order is charged.
type BillingType string

const (
	BillingPerDay  BillingType = "perDay"
	BillingLumpSum BillingType = "lumpSum"
)

func (b BillingType) Valid() bool {
	return b == BillingPerDay || b == BillingLumpSum
}

// Order statuses are kind-specific and kept in the operators' language.
const (
	RentalPending       = "Pendente"
	RentalActive        = "Ativo"
	RentalFinished      = "Finalizado"
	RentalOverdue       = "Atrasado"
	OperationPending    = "Pendente"
	OperationInProgress = "Em Andamento"
	OperationDone       = "Concluído"
)

var rentalStatuses = []string{RentalPending, RentalActive, RentalFinished, RentalOverdue}
var operationStatuses = []string{OperationPending, OperationInProgress, OperationDone}

// InitialStatus returns the status a freshly created order of the given kind starts in.
func InitialStatus(kind OrderKind) string {
	if kind == KindOperation {
		return OperationPending
	}
	return RentalPending
}

// ValidStatus reports whether status belongs to the kind's status set.
func ValidStatus(kind OrderKind, status string) bool {
	set := rentalStatuses
	if kind == KindOperation {
		set = operationStatuses
	}
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// AdditionalCost is a named extra charge attached to an order.
type AdditionalCost struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Order is a Rental or Operation record representing a scheduled service.
//
// SequentialID is a per-account, per-kind monotonically increasing integer
// assigned inside a store transaction; it must never collide or skip under
// concurrent creation.
type Order struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Kind         OrderKind
	SequentialID int64

	// Back-reference to the profile that spawned this order, if any.
	RecurrenceProfileID *uuid.UUID

	ClientName   string
	AssigneeName string
	TruckID      *uuid.UUID

	OriginAddress      string
	OriginCoord        *Coordinates
	DestinationAddress string
	DestinationCoord   *Coordinates

	// Rental: delivery and pickup dates. Operation: start and end timestamps.
	StartsAt time.Time
	EndsAt   *time.Time

	Status          string
	BillingType     BillingType
	Value           decimal.Decimal
	AdditionalCosts []AdditionalCost

	// TravelCost is computed from route planning, never user-entered.
	TravelCost decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields a caller controls on creation.
func (o *Order) Validate() error {
	if o.AccountID == uuid.Nil {
		return NewValidationError("accountId", "must be set")
	}
	if !o.Kind.Valid() {
		return NewValidationError("kind", fmt.Sprintf("unknown kind %q", o.Kind))
	}
	if strings.TrimSpace(o.ClientName) == "" {
		return NewValidationError("clientName", "must be non-empty")
	}
	if o.StartsAt.IsZero() {
		return NewValidationError("startsAt", "must be set")
	}
	if o.EndsAt != nil && o.EndsAt.Before(o.StartsAt) {
		return NewValidationError("endsAt", "must not precede startsAt")
	}
	if !o.BillingType.Valid() {
		return NewValidationError("billingType", fmt.Sprintf("unknown billing type %q", o.BillingType))
	}
	if o.Value.IsNegative() {
		return NewValidationError("value", "must not be negative")
	}
	if o.Status != "" && !ValidStatus(o.Kind, o.Status) {
		return NewValidationError("status", fmt.Sprintf("%q is not a %s status", o.Status, o.Kind))
	}
	return nil
}

// TotalValue is the order value plus all additional costs.
func (o *Order) TotalValue() decimal.Decimal {
	total := o.Value
	for _, c := range o.AdditionalCosts {
		total = total.Add(c.Value)
	}
	return total
}
