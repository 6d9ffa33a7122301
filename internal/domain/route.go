package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stop is one destination in a route-optimization request, derived from an
// Order. Stops are ephemeral planning data, recomputed per request and never
// persisted.
type Stop struct {
	OrderID       uuid.UUID
	ClientName    string
	Address       string
	Coord         *Coordinates // nil means the stop cannot be routed
	ServiceTime   time.Duration
	Value         decimal.Decimal
	IsEntryOrExit bool
}

// LegQuality records how a leg's distance/duration were obtained.
type LegQuality string

const (
	// LegMeasured comes from the directions provider.
	LegMeasured LegQuality = "measured"
	// LegEstimated is a straight-line fallback after the provider failed.
	LegEstimated LegQuality = "estimated"
)

// PlannedStop is a stop placed in the optimized visiting sequence.
type PlannedStop struct {
	Stop         Stop
	OrderInRoute int

	PredictedArrival time.Time
	// MustDepartBy is the latest the driver can leave this stop and still
	// arrive on time at the one after it. Zero for the final stop, which
	// has no onward leg.
	MustDepartBy       time.Time
	TravelMinutesSoFar int

	LegDistanceMeters  int
	LegDurationSeconds int
	LegQuality         LegQuality
}

// OptimizedRoute is the read-only output of the route sequencer. The caller
// persists nothing from it unless a human confirms the plan.
type OptimizedRoute struct {
	BaseDeparture time.Time
	Stops         []PlannedStop

	// Skipped lists stops excluded from sequencing (no coordinates).
	Skipped []Stop

	TotalDistanceMeters  int
	TotalDurationSeconds int
	TotalCost            decimal.Decimal
	TotalRevenue         decimal.Decimal
	Profit               decimal.Decimal

	// Advisory is best-effort prose for human display; empty when the
	// conditions service is unavailable.
	Advisory string
}
