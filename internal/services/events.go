package services

import (
	"context"
	"fmt"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/ports"
)

// OrderEvents dispatches the side effects of a committed order: push
// notification and calendar sync. Both are fire-and-forget; failures are
// logged and never roll back the order. A nil receiver or nil port is a
// no-op, so callers do not need to guard for missing configuration.
type OrderEvents struct {
	notifier ports.Notifier
	calendar ports.CalendarSync
	log      *logger.Logger
}

func NewOrderEvents(notifier ports.Notifier, calendar ports.CalendarSync, log *logger.Logger) *OrderEvents {
	if log == nil {
		log = logger.L
	}
	return &OrderEvents{notifier: notifier, calendar: calendar, log: log}
}

func (e *OrderEvents) OrderCreated(ctx context.Context, order *domain.Order) {
	if e == nil {
		return
	}

	if e.notifier != nil {
		n := ports.Notification{
			RecipientID: order.AssigneeName,
			Title:       fmt.Sprintf("Novo pedido #%d", order.SequentialID),
			Body:        fmt.Sprintf("%s — %s", order.ClientName, order.DestinationAddress),
		}
		if err := e.notifier.Send(ctx, n); err != nil {
			e.log.Warnw("notification dispatch failed", "order_id", order.ID, "err", err)
		}
	}

	if e.calendar != nil {
		if err := e.calendar.SyncOrder(ctx, order); err != nil {
			e.log.Warnw("calendar sync failed", "order_id", order.ID, "err", err)
		}
	}
}
