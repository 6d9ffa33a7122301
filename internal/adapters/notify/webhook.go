package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// WebhookNotifier posts notifications to an external push gateway. Callers
// treat every failure as non-fatal; nothing here retries.
type WebhookNotifier struct {
	session *http.Client
	url     string
}

func NewWebhookNotifier(url string) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("notifier webhook url is empty")
	}
	return &WebhookNotifier{
		session: &http.Client{Timeout: 5 * time.Second},
		url:     url,
	}, nil
}

type notificationPayload struct {
	RecipientID string `json:"recipientId"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

func (n *WebhookNotifier) Send(ctx context.Context, notification ports.Notification) (err error) {
	defer obs.Time(ctx, "notify.Send")(&err)

	payload, err := json.Marshal(notificationPayload{
		RecipientID: notification.RecipientID,
		Title:       notification.Title,
		Body:        notification.Body,
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	return postJSON(ctx, n.session, n.url, payload)
}

// HTTPCalendarSync mirrors orders into an external calendar service.
type HTTPCalendarSync struct {
	session *http.Client
	url     string
}

func NewHTTPCalendarSync(url string) (*HTTPCalendarSync, error) {
	if url == "" {
		return nil, errors.New("calendar sync url is empty")
	}
	return &HTTPCalendarSync{
		session: &http.Client{Timeout: 5 * time.Second},
		url:     url,
	}, nil
}

type calendarEventPayload struct {
	OrderID      string     `json:"orderId"`
	SequentialID int64      `json:"sequentialId"`
	Kind         string     `json:"kind"`
	ClientName   string     `json:"clientName"`
	Address      string     `json:"address"`
	StartsAt     time.Time  `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt,omitempty"`
}

func (c *HTTPCalendarSync) SyncOrder(ctx context.Context, order *domain.Order) (err error) {
	defer obs.Time(ctx, "calendar.SyncOrder")(&err)

	if order == nil {
		return errors.New("sync order: order is nil")
	}

	payload, err := json.Marshal(calendarEventPayload{
		OrderID:      order.ID.String(),
		SequentialID: order.SequentialID,
		Kind:         string(order.Kind),
		ClientName:   order.ClientName,
		Address:      order.DestinationAddress,
		StartsAt:     order.StartsAt,
		EndsAt:       order.EndsAt,
	})
	if err != nil {
		return fmt.Errorf("marshal calendar event: %w", err)
	}

	return postJSON(ctx, c.session, c.url, payload)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return nil
}
