package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is the cadence at which a recurrence profile fires.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// ProfileStatus is the recurrence profile lifecycle state.
// cancelled and expired are terminal.
type ProfileStatus string

const (
	ProfileActive    ProfileStatus = "active"
	ProfileCancelled ProfileStatus = "cancelled"
	ProfileExpired   ProfileStatus = "expired"
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTimeOfDay reports whether s is a 24-hour "HH:MM" string.
func ValidTimeOfDay(s string) bool { return timeOfDayPattern.MatchString(s) }

// OrderTemplate is the frozen snapshot of order fields a recurrence profile
// copies into each newly spawned order. It carries everything except
// identity, sequence number, timestamps, and status. Versioned so stored
// snapshots can be migrated if the shape changes.
type OrderTemplate struct {
	Version int `json:"version"`

	Kind         OrderKind  `json:"kind"`
	ClientName   string     `json:"clientName"`
	AssigneeName string     `json:"assigneeName,omitempty"`
	TruckID      *uuid.UUID `json:"truckId,omitempty"`

	OriginAddress      string       `json:"originAddress"`
	OriginCoord        *Coordinates `json:"originCoord,omitempty"`
	DestinationAddress string       `json:"destinationAddress"`
	DestinationCoord   *Coordinates `json:"destinationCoord,omitempty"`

	// PeriodDays is the rental period (or operation span) applied to each
	// spawned order: EndsAt = StartsAt + PeriodDays. Zero means open-ended.
	PeriodDays int `json:"periodDays"`

	BillingType     BillingType      `json:"billingType"`
	Value           decimal.Decimal  `json:"value"`
	AdditionalCosts []AdditionalCost `json:"additionalCosts,omitempty"`
}

const TemplateVersion = 1

// Materialize builds a new order from the template for the given occurrence.
// Identity, sequence number and timestamps are left for the store to assign.
func (t OrderTemplate) Materialize(accountID, profileID uuid.UUID, occursAt time.Time) *Order {
	o := &Order{
		AccountID:           accountID,
		Kind:                t.Kind,
		RecurrenceProfileID: &profileID,
		ClientName:          t.ClientName,
		AssigneeName:        t.AssigneeName,
		TruckID:             t.TruckID,
		OriginAddress:       t.OriginAddress,
		OriginCoord:         t.OriginCoord,
		DestinationAddress:  t.DestinationAddress,
		DestinationCoord:    t.DestinationCoord,
		StartsAt:            occursAt,
		Status:              InitialStatus(t.Kind),
		BillingType:         t.BillingType,
		Value:               t.Value,
		AdditionalCosts:     t.AdditionalCosts,
	}
	if t.PeriodDays > 0 {
		ends := occursAt.AddDate(0, 0, t.PeriodDays)
		o.EndsAt = &ends
	}
	return o
}

// RecurrenceProfile is a template plus cadence that periodically spawns new
// orders. It is never hard-deleted; terminal profiles are kept for audit.
type RecurrenceProfile struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Kind      OrderKind

	Frequency  Frequency
	DaysOfWeek []time.Weekday
	TimeOfDay  string // "HH:MM", local to the business timezone
	EndDate    *time.Time

	BillingType BillingType
	Status      ProfileStatus

	// NextRunDate is always strictly in the future relative to the last
	// generation event and falls on one of DaysOfWeek at TimeOfDay.
	NextRunDate time.Time

	// OriginalOrderID points at the first order spawned from this profile.
	OriginalOrderID uuid.UUID

	Template OrderTemplate

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks cadence fields before any persistence.
func (p *RecurrenceProfile) Validate() error {
	if p.AccountID == uuid.Nil {
		return NewValidationError("accountId", "must be set")
	}
	if !p.Kind.Valid() {
		return NewValidationError("kind", fmt.Sprintf("unknown kind %q", p.Kind))
	}
	if !p.Frequency.Valid() {
		return NewValidationError("frequency", fmt.Sprintf("unknown frequency %q", p.Frequency))
	}
	// Monthly cadences run on the day-of-month and ignore the weekday set.
	if len(p.DaysOfWeek) == 0 && p.Frequency != FrequencyMonthly {
		return NewValidationError("daysOfWeek", "must be non-empty")
	}
	for _, d := range p.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return NewValidationError("daysOfWeek", fmt.Sprintf("day index %d out of range", d))
		}
	}
	if !ValidTimeOfDay(p.TimeOfDay) {
		return NewValidationError("time", fmt.Sprintf("%q is not a valid HH:MM time", p.TimeOfDay))
	}
	if !p.BillingType.Valid() {
		return NewValidationError("billingType", fmt.Sprintf("unknown billing type %q", p.BillingType))
	}
	return nil
}

// Due reports whether the profile should generate at the given instant.
func (p *RecurrenceProfile) Due(now time.Time) bool {
	return p.Status == ProfileActive && !p.NextRunDate.After(now)
}

// Ended reports whether the profile's end date has passed.
func (p *RecurrenceProfile) Ended(now time.Time) bool {
	return p.EndDate != nil && !now.Before(*p.EndDate)
}
