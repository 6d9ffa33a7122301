package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateTruckRequest struct {
	Plate    string     `json:"plate" validate:"required"`
	TypeName string     `json:"typeName" validate:"required"`
	BaseID   *uuid.UUID `json:"baseId"`
}

type TruckResponse struct {
	ID        uuid.UUID  `json:"id"`
	Plate     string     `json:"plate"`
	TypeName  string     `json:"typeName"`
	BaseID    *uuid.UUID `json:"baseId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ListTrucksResponse struct {
	Trucks []TruckResponse `json:"trucks"`
}

type CreateTruckTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

type TruckTypeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ListTruckTypesResponse struct {
	TruckTypes []TruckTypeResponse `json:"truckTypes"`
}

type CreateBaseRequest struct {
	Name    string              `json:"name" validate:"required"`
	Address string              `json:"address"`
	Coord   *CoordinatesPayload `json:"coord"`
}

type BaseResponse struct {
	ID      uuid.UUID           `json:"id"`
	Name    string              `json:"name"`
	Address string              `json:"address,omitempty"`
	Coord   *CoordinatesPayload `json:"coord,omitempty"`
}

type ListBasesResponse struct {
	Bases []BaseResponse `json:"bases"`
}

type CreateCostConfigRequest struct {
	BaseID      *uuid.UUID      `json:"baseId"`
	TruckTypeID uuid.UUID       `json:"truckTypeId" validate:"required"`
	Value       decimal.Decimal `json:"value" validate:"required"`
}

type CostConfigResponse struct {
	ID          uuid.UUID       `json:"id"`
	BaseID      *uuid.UUID      `json:"baseId,omitempty"`
	TruckTypeID uuid.UUID       `json:"truckTypeId"`
	Value       decimal.Decimal `json:"value"`
}

type ListCostConfigsResponse struct {
	CostConfigs []CostConfigResponse `json:"costConfigs"`
}
