package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// Postgres-backed implementation of the OrderRepository port.
type PGOrderRepository struct{ Pool *pgxpool.Pool }

func NewPGOrderRepository(pool *pgxpool.Pool) *PGOrderRepository {
	return &PGOrderRepository{Pool: pool}
}

const orderColumns = `
	id, account_id, kind, sequential_id, recurrence_profile_id,
	client_name, assignee_name, truck_id,
	origin_address, origin_lon, origin_lat,
	destination_address, destination_lon, destination_lat,
	starts_at, ends_at, status, billing_type, value, additional_costs,
	travel_cost, created_at, updated_at`

// nextSequentialID advances the per-account, per-kind counter inside the
// caller's transaction. The single-statement upsert serializes concurrent
// callers on the counter row, so values never collide or skip.
func nextSequentialID(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, kind domain.OrderKind) (int64, error) {
	q := `
	INSERT INTO sequence_counters (account_id, kind, value)
	VALUES ($1, $2, 1)
	ON CONFLICT (account_id, kind) DO UPDATE
	SET value = sequence_counters.value + 1
	RETURNING value;
	`

	var seq int64
	if err := tx.QueryRow(ctx, q, accountID, string(kind)).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequential id: %w", err)
	}
	return seq, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	q := `
	INSERT INTO orders (` + orderColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21, $22, $23);
	`

	var originLon, originLat, destLon, destLat *float64
	if o.OriginCoord != nil {
		originLon, originLat = &o.OriginCoord.Lon, &o.OriginCoord.Lat
	}
	if o.DestinationCoord != nil {
		destLon, destLat = &o.DestinationCoord.Lon, &o.DestinationCoord.Lat
	}

	costs := o.AdditionalCosts
	if costs == nil {
		costs = []domain.AdditionalCost{}
	}

	_, err := tx.Exec(ctx, q,
		o.ID, o.AccountID, string(o.Kind), o.SequentialID, o.RecurrenceProfileID,
		o.ClientName, o.AssigneeName, o.TruckID,
		o.OriginAddress, originLon, originLat,
		o.DestinationAddress, destLon, destLat,
		o.StartsAt, o.EndsAt, o.Status, string(o.BillingType), o.Value, costs,
		o.TravelCost, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var originLon, originLat, destLon, destLat *float64

	err := row.Scan(
		&o.ID, &o.AccountID, &o.Kind, &o.SequentialID, &o.RecurrenceProfileID,
		&o.ClientName, &o.AssigneeName, &o.TruckID,
		&o.OriginAddress, &originLon, &originLat,
		&o.DestinationAddress, &destLon, &destLat,
		&o.StartsAt, &o.EndsAt, &o.Status, &o.BillingType, &o.Value, &o.AdditionalCosts,
		&o.TravelCost, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if originLon != nil && originLat != nil {
		o.OriginCoord = &domain.Coordinates{Lon: *originLon, Lat: *originLat}
	}
	if destLon != nil && destLat != nil {
		o.DestinationCoord = &domain.Coordinates{Lon: *destLon, Lat: *destLat}
	}

	return &o, nil
}

// Create persists the order, assigning its id and sequential number.
func (r *PGOrderRepository) Create(ctx context.Context, order *domain.Order) (err error) {
	defer obs.Time(ctx, "orders.Create")(&err)

	if r.Pool == nil {
		return errors.New("order repository: pool is nil")
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.InitialStatus(order.Kind)
	}

	err = pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		seq, err := nextSequentialID(ctx, tx, order.AccountID, order.Kind)
		if err != nil {
			return err
		}
		order.SequentialID = seq
		return insertOrder(ctx, tx, order)
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	return nil
}

func (r *PGOrderRepository) Get(ctx context.Context, accountID, orderID uuid.UUID) (*domain.Order, error) {
	if r.Pool == nil {
		return nil, errors.New("order repository: pool is nil")
	}

	q := `SELECT ` + orderColumns + ` FROM orders WHERE account_id = $1 AND id = $2;`

	o, err := scanOrder(r.Pool.QueryRow(ctx, q, accountID, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *PGOrderRepository) List(ctx context.Context, accountID uuid.UUID, filter ports.OrderFilter) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "orders.List")(&err)

	if r.Pool == nil {
		return nil, errors.New("order repository: pool is nil")
	}

	q := `SELECT ` + orderColumns + ` FROM orders WHERE account_id = $1`
	args := []any{accountID}

	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		q += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}

	q += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, 64)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

// UpdateStatus validates the status against the order's kind before writing.
func (r *PGOrderRepository) UpdateStatus(ctx context.Context, accountID, orderID uuid.UUID, status string) error {
	if r.Pool == nil {
		return errors.New("order repository: pool is nil")
	}

	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		var kind domain.OrderKind
		q := `SELECT kind FROM orders WHERE account_id = $1 AND id = $2 FOR UPDATE;`
		if err := tx.QueryRow(ctx, q, accountID, orderID).Scan(&kind); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lookup order kind: %w", err)
		}

		if !domain.ValidStatus(kind, status) {
			return domain.NewValidationError("status", fmt.Sprintf("%q is not a %s status", status, kind))
		}

		_, err := tx.Exec(ctx,
			`UPDATE orders SET status = $1, updated_at = $2 WHERE account_id = $3 AND id = $4;`,
			status, time.Now().UTC(), accountID, orderID,
		)
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		// Sentinel and validation errors pass through for handler mapping.
		return err
	}

	return nil
}

// MarkOverdueRentals flags active rentals whose return date has passed.
// A nil accountID sweeps every account.
func (r *PGOrderRepository) MarkOverdueRentals(ctx context.Context, accountID *uuid.UUID, now time.Time) (_ int, err error) {
	defer obs.Time(ctx, "orders.MarkOverdueRentals")(&err)

	if r.Pool == nil {
		return 0, errors.New("order repository: pool is nil")
	}

	q := `
	UPDATE orders
	SET status = $1, updated_at = $2
	WHERE kind = $3
		AND status = $4
		AND ends_at IS NOT NULL
		AND ends_at < $5
	`
	args := []any{
		domain.RentalOverdue, now.UTC(),
		string(domain.KindRental), domain.RentalActive, now,
	}
	if accountID != nil {
		q += " AND account_id = $6"
		args = append(args, *accountID)
	}

	tag, err := r.Pool.Exec(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("mark overdue rentals: %w", err)
	}

	return int(tag.RowsAffected()), nil
}
