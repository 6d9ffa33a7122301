package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OptimizeRouteRequest struct {
	TruckID       uuid.UUID   `json:"truckId" validate:"required"`
	OrderIDs      []uuid.UUID `json:"orderIds" validate:"required,min=1"`
	DepartureTime time.Time   `json:"departureTime" validate:"required"`

	StartLocation      *CoordinatesPayload `json:"startLocation"`
	ServiceTimeMinutes int                 `json:"serviceTimeMinutes" validate:"min=0,max=480"`
}

type PlannedStopResponse struct {
	OrderID      uuid.UUID `json:"orderId"`
	ClientName   string    `json:"clientName"`
	Address      string    `json:"address,omitempty"`
	OrderInRoute int       `json:"orderInRoute"`

	PredictedArrival time.Time `json:"predictedArrival"`
	// mustDepartBy is omitted for the final stop, which has no onward leg.
	MustDepartBy       *time.Time `json:"mustDepartBy,omitempty"`
	TravelMinutesSoFar int        `json:"travelMinutesSoFar"`

	LegDistanceMeters  int    `json:"legDistanceMeters"`
	LegDurationSeconds int    `json:"legDurationSeconds"`
	LegQuality         string `json:"legQuality"`
}

type SkippedStopResponse struct {
	OrderID    uuid.UUID `json:"orderId"`
	ClientName string    `json:"clientName"`
	Address    string    `json:"address,omitempty"`
	Reason     string    `json:"reason"`
}

type OptimizedRouteResponse struct {
	BaseDeparture time.Time             `json:"baseDeparture"`
	Stops         []PlannedStopResponse `json:"stops"`
	Skipped       []SkippedStopResponse `json:"skipped,omitempty"`

	TotalDistanceMeters  int             `json:"totalDistanceMeters"`
	TotalDurationSeconds int             `json:"totalDurationSeconds"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	TotalRevenue         decimal.Decimal `json:"totalRevenue"`
	Profit               decimal.Decimal `json:"profit"`

	Advisory string `json:"advisory,omitempty"`
}
