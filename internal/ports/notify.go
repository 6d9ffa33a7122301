package ports

import (
	"context"

	"rental-ops-service/internal/domain"
)

// Notification is a push message addressed to one recipient.
type Notification struct {
	RecipientID string
	Title       string
	Body        string
}

// Port for dispatching push notifications. Fire-and-forget from the core's
// perspective: failures are logged, never rolled back into order mutations.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Port for mirroring an order into an external calendar. Invoked after
// order creation/update; failure is surfaced to the caller but does not
// roll back the order mutation.
type CalendarSync interface {
	SyncOrder(ctx context.Context, order *domain.Order) error
}
