package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CoordinatesPayload struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type AdditionalCostPayload struct {
	Name  string          `json:"name" validate:"required"`
	Value decimal.Decimal `json:"value"`
}

type CreateOrderRequest struct {
	Kind         string     `json:"kind" validate:"required,oneof=rental operation"`
	ClientName   string     `json:"clientName" validate:"required"`
	AssigneeName string     `json:"assigneeName"`
	TruckID      *uuid.UUID `json:"truckId"`

	OriginAddress      string              `json:"originAddress"`
	OriginCoord        *CoordinatesPayload `json:"originCoord"`
	DestinationAddress string              `json:"destinationAddress"`
	DestinationCoord   *CoordinatesPayload `json:"destinationCoord"`

	StartsAt time.Time  `json:"startsAt" validate:"required"`
	EndsAt   *time.Time `json:"endsAt"`

	BillingType     string                  `json:"billingType" validate:"required,oneof=perDay lumpSum"`
	Value           decimal.Decimal         `json:"value"`
	AdditionalCosts []AdditionalCostPayload `json:"additionalCosts" validate:"dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Kind                string     `json:"kind"`
	SequentialID        int64      `json:"sequentialId"`
	RecurrenceProfileID *uuid.UUID `json:"recurrenceProfileId,omitempty"`

	ClientName   string     `json:"clientName"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	TruckID      *uuid.UUID `json:"truckId,omitempty"`

	OriginAddress      string              `json:"originAddress,omitempty"`
	OriginCoord        *CoordinatesPayload `json:"originCoord,omitempty"`
	DestinationAddress string              `json:"destinationAddress,omitempty"`
	DestinationCoord   *CoordinatesPayload `json:"destinationCoord,omitempty"`

	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`

	Status          string                  `json:"status"`
	BillingType     string                  `json:"billingType"`
	Value           decimal.Decimal         `json:"value"`
	AdditionalCosts []AdditionalCostPayload `json:"additionalCosts,omitempty"`
	TotalValue      decimal.Decimal         `json:"totalValue"`
	TravelCost      decimal.Decimal         `json:"travelCost"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
