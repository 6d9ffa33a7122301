package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateRecurrenceRequest struct {
	Order CreateOrderRequest `json:"order" validate:"required"`

	Frequency  string     `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
	DaysOfWeek []int      `json:"daysOfWeek" validate:"dive,min=0,max=6"`
	TimeOfDay  string     `json:"timeOfDay" validate:"required"`
	EndDate    *time.Time `json:"endDate"`
}

type RecurrenceResponse struct {
	ID              uuid.UUID  `json:"id"`
	Kind            string     `json:"kind"`
	Frequency       string     `json:"frequency"`
	DaysOfWeek      []int      `json:"daysOfWeek"`
	TimeOfDay       string     `json:"timeOfDay"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	BillingType     string     `json:"billingType"`
	Status          string     `json:"status"`
	NextRunDate     time.Time  `json:"nextRunDate"`
	OriginalOrderID uuid.UUID  `json:"originalOrderId"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type TickResponse struct {
	Generated      []uuid.UUID `json:"generated"`
	Expired        int         `json:"expired"`
	Failed         int         `json:"failed"`
	OverdueFlagged int         `json:"overdueFlagged"`
}
