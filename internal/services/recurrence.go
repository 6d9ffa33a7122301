package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// RecurrenceEngine owns recurrence profiles: it creates them atomically with
// their first order, spawns follow-up orders on each tick, and retires
// profiles whose end date has passed.
//
// The engine is stateless between invocations; all state lives in the
// repositories. Ticks are driven externally (HTTP trigger or the optional
// cron runner in the composition root).
type RecurrenceEngine struct {
	profiles ports.RecurrenceRepository
	orders   ports.OrderRepository
	events   *OrderEvents
	loc      *time.Location
	log      *logger.Logger
}

func NewRecurrenceEngine(
	profiles ports.RecurrenceRepository,
	orders ports.OrderRepository,
	events *OrderEvents,
	loc *time.Location,
	log *logger.Logger,
) *RecurrenceEngine {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.L
	}
	return &RecurrenceEngine{
		profiles: profiles,
		orders:   orders,
		events:   events,
		loc:      loc,
		log:      log,
	}
}

// CreateProfile validates the cadence, computes the initial next run date,
// and persists the profile together with its first concrete order in one
// atomic transaction. Partial creation is a correctness violation: the
// profile's OriginalOrderID must point at a real order.
func (e *RecurrenceEngine) CreateProfile(ctx context.Context, draft *domain.Order, p *domain.RecurrenceProfile, now time.Time) (_ *domain.RecurrenceProfile, err error) {
	defer obs.Time(ctx, "recurrence.CreateProfile")(&err)

	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.EndDate != nil && p.EndDate.Before(draft.StartsAt) {
		return nil, domain.NewValidationError("endDate", "must not precede the start date")
	}

	draft.ID = uuid.New()
	draft.Kind = p.Kind
	draft.BillingType = p.BillingType
	draft.Status = domain.InitialStatus(draft.Kind)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	local := now.In(e.loc)
	next, err := NextRun(p.Frequency, p.DaysOfWeek, p.TimeOfDay, local)
	if err != nil {
		return nil, err
	}
	if p.EndDate != nil && next.After(*p.EndDate) {
		return nil, domain.NewValidationError("endDate", "passes before the first recurrence would run")
	}

	p.ID = uuid.New()
	p.Status = domain.ProfileActive
	p.NextRunDate = next
	p.OriginalOrderID = draft.ID
	p.Template = snapshotTemplate(draft)
	draft.RecurrenceProfileID = &p.ID

	if err := e.profiles.CreateWithFirstOrder(ctx, p, draft); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	e.events.OrderCreated(ctx, draft)
	return p, nil
}

// snapshotTemplate freezes the draft's order fields into the profile
// template: everything except identity, sequence number, timestamps and
// status.
func snapshotTemplate(draft *domain.Order) domain.OrderTemplate {
	t := domain.OrderTemplate{
		Version:            domain.TemplateVersion,
		Kind:               draft.Kind,
		ClientName:         draft.ClientName,
		AssigneeName:       draft.AssigneeName,
		TruckID:            draft.TruckID,
		OriginAddress:      draft.OriginAddress,
		OriginCoord:        draft.OriginCoord,
		DestinationAddress: draft.DestinationAddress,
		DestinationCoord:   draft.DestinationCoord,
		BillingType:        draft.BillingType,
		Value:              draft.Value,
		AdditionalCosts:    draft.AdditionalCosts,
	}
	if draft.EndsAt != nil {
		days := int(draft.EndsAt.Sub(draft.StartsAt).Hours() / 24)
		if days > 0 {
			t.PeriodDays = days
		}
	}
	return t
}

// TickReport summarizes one tick invocation.
type TickReport struct {
	Generated      []uuid.UUID
	Expired        int
	Failed         int
	OverdueFlagged int
}

// Tick processes every due profile for the account (all accounts when
// accountID is nil). Each profile is handled in its own transaction: a
// failure to materialize one order is logged and retried on the next tick
// without blocking other profiles and without advancing that profile's
// schedule.
func (e *RecurrenceEngine) Tick(ctx context.Context, accountID *uuid.UUID, now time.Time) (_ TickReport, err error) {
	defer obs.Time(ctx, "recurrence.Tick")(&err)

	var report TickReport

	due, err := e.profiles.ListDue(ctx, accountID, now)
	if err != nil {
		return report, fmt.Errorf("tick: list due profiles: %w", err)
	}

	for _, p := range due {
		if p.Ended(now) {
			if err := e.profiles.Expire(ctx, p.AccountID, p.ID); err != nil {
				e.log.Errorw("expire profile failed", "profile_id", p.ID, "err", err)
				report.Failed++
				continue
			}
			report.Expired++
			continue
		}

		order, err := e.profiles.Generate(ctx, p.AccountID, p.ID, now, e.materializer(now))
		if err != nil {
			if errors.Is(err, domain.ErrProfileNotDue) {
				// Another tick got there first; nothing to retry.
				continue
			}
			// Schedule deliberately not advanced: the profile stays due
			// and is retried on the next tick.
			e.log.Errorw("generate order failed", "profile_id", p.ID, "err", err)
			report.Failed++
			continue
		}

		report.Generated = append(report.Generated, order.ID)
		e.events.OrderCreated(ctx, order)
	}

	flagged, err := e.orders.MarkOverdueRentals(ctx, accountID, now)
	if err != nil {
		e.log.Errorw("overdue sweep failed", "err", err)
	} else {
		report.OverdueFlagged = flagged
	}

	return report, nil
}

// materializer builds the MaterializeFunc for one tick instant. The order
// starts at the occurrence being served (the profile's next run date) and
// the schedule advances from "now" per the profile cadence.
func (e *RecurrenceEngine) materializer(now time.Time) ports.MaterializeFunc {
	return func(p *domain.RecurrenceProfile) (*domain.Order, time.Time, error) {
		order := p.Template.Materialize(p.AccountID, p.ID, p.NextRunDate)
		order.ID = uuid.New()
		if err := order.Validate(); err != nil {
			return nil, time.Time{}, fmt.Errorf("materialize from template: %w", err)
		}

		next, err := NextRun(p.Frequency, p.DaysOfWeek, p.TimeOfDay, now.In(e.loc))
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("advance next run: %w", err)
		}
		return order, next, nil
	}
}

// Cancel sets the profile to cancelled. Cancelling an already-cancelled
// profile is a no-op success.
func (e *RecurrenceEngine) Cancel(ctx context.Context, accountID, profileID uuid.UUID) error {
	if err := e.profiles.Cancel(ctx, accountID, profileID); err != nil {
		return fmt.Errorf("cancel profile: %w", err)
	}
	return nil
}
