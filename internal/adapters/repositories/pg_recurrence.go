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

// Postgres-backed implementation of the RecurrenceRepository port.
//
// Generation is serialized per profile with a SELECT FOR UPDATE row lock:
// the spawned order, its sequential id and the advanced next_run_date all
// commit in the same transaction, so a profile can never advance without
// its order being persisted.
type PGRecurrenceRepository struct{ Pool *pgxpool.Pool }

func NewPGRecurrenceRepository(pool *pgxpool.Pool) *PGRecurrenceRepository {
	return &PGRecurrenceRepository{Pool: pool}
}

const profileColumns = `
	id, account_id, kind, frequency, days_of_week, time_of_day, end_date,
	billing_type, status, next_run_date, original_order_id, template,
	created_at, updated_at`

func insertProfile(ctx context.Context, tx pgx.Tx, p *domain.RecurrenceProfile) error {
	q := `
	INSERT INTO recurrence_profiles (` + profileColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`

	days := make([]int32, len(p.DaysOfWeek))
	for i, d := range p.DaysOfWeek {
		days[i] = int32(d)
	}

	_, err := tx.Exec(ctx, q,
		p.ID, p.AccountID, string(p.Kind), string(p.Frequency), days, p.TimeOfDay, p.EndDate,
		string(p.BillingType), string(p.Status), p.NextRunDate, p.OriginalOrderID, p.Template,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recurrence profile: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.RecurrenceProfile, error) {
	var p domain.RecurrenceProfile
	var days []int32

	err := row.Scan(
		&p.ID, &p.AccountID, &p.Kind, &p.Frequency, &days, &p.TimeOfDay, &p.EndDate,
		&p.BillingType, &p.Status, &p.NextRunDate, &p.OriginalOrderID, &p.Template,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.DaysOfWeek = make([]time.Weekday, len(days))
	for i, d := range days {
		p.DaysOfWeek[i] = time.Weekday(d)
	}

	return &p, nil
}

// CreateWithFirstOrder persists the profile and its first concrete order in
// one transaction.
func (r *PGRecurrenceRepository) CreateWithFirstOrder(ctx context.Context, p *domain.RecurrenceProfile, first *domain.Order) (err error) {
	defer obs.Time(ctx, "recurrences.CreateWithFirstOrder")(&err)

	if r.Pool == nil {
		return errors.New("recurrence repository: pool is nil")
	}

	now := time.Now().UTC()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if first.ID == uuid.Nil {
		first.ID = uuid.New()
	}
	profileID := p.ID
	first.RecurrenceProfileID = &profileID
	p.OriginalOrderID = first.ID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if first.CreatedAt.IsZero() {
		first.CreatedAt = now
	}
	first.UpdatedAt = now
	if first.Status == "" {
		first.Status = domain.InitialStatus(first.Kind)
	}

	err = pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		seq, err := nextSequentialID(ctx, tx, first.AccountID, first.Kind)
		if err != nil {
			return err
		}
		first.SequentialID = seq

		if err := insertOrder(ctx, tx, first); err != nil {
			return err
		}
		return insertProfile(ctx, tx, p)
	})
	if err != nil {
		return fmt.Errorf("create recurrence with first order: %w", err)
	}

	return nil
}

func (r *PGRecurrenceRepository) Get(ctx context.Context, accountID, profileID uuid.UUID) (*domain.RecurrenceProfile, error) {
	if r.Pool == nil {
		return nil, errors.New("recurrence repository: pool is nil")
	}

	q := `SELECT ` + profileColumns + ` FROM recurrence_profiles WHERE account_id = $1 AND id = $2;`

	p, err := scanProfile(r.Pool.QueryRow(ctx, q, accountID, profileID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recurrence profile: %w", err)
	}
	return p, nil
}

// ListDue returns active profiles whose next run is at or before now,
// earliest first. A nil accountID spans all accounts.
func (r *PGRecurrenceRepository) ListDue(ctx context.Context, accountID *uuid.UUID, now time.Time) (_ []*domain.RecurrenceProfile, err error) {
	defer obs.Time(ctx, "recurrences.ListDue")(&err)

	if r.Pool == nil {
		return nil, errors.New("recurrence repository: pool is nil")
	}

	q := `
	SELECT ` + profileColumns + `
	FROM recurrence_profiles
	WHERE status = $1 AND next_run_date <= $2`
	args := []any{string(domain.ProfileActive), now}

	if accountID != nil {
		args = append(args, *accountID)
		q += fmt.Sprintf(" AND account_id = $%d", len(args))
	}

	q += " ORDER BY next_run_date;"

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list due profiles: query: %w", err)
	}
	defer rows.Close()

	profiles := make([]*domain.RecurrenceProfile, 0, 16)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list due profiles: scan row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due profiles: row iteration: %w", err)
	}

	return profiles, nil
}

// Generate spawns the next order for a due profile. The profile row is
// locked for the duration, and dueness is re-checked under the lock so
// concurrent ticks settle on exactly one generation per occurrence.
func (r *PGRecurrenceRepository) Generate(
	ctx context.Context,
	accountID, profileID uuid.UUID,
	now time.Time,
	materialize ports.MaterializeFunc,
) (_ *domain.Order, err error) {
	defer obs.Time(ctx, "recurrences.Generate")(&err)

	if r.Pool == nil {
		return nil, errors.New("recurrence repository: pool is nil")
	}
	if materialize == nil {
		return nil, errors.New("generate: materialize func is nil")
	}

	var order *domain.Order

	err = pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		q := `
		SELECT ` + profileColumns + `
		FROM recurrence_profiles
		WHERE account_id = $1 AND id = $2
		FOR UPDATE;
		`

		p, err := scanProfile(tx.QueryRow(ctx, q, accountID, profileID))
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock profile: %w", err)
		}

		if !p.Due(now) {
			return domain.ErrProfileNotDue
		}

		o, next, err := materialize(p)
		if err != nil {
			return fmt.Errorf("materialize order: %w", err)
		}

		writeTime := time.Now().UTC()
		o.ID = uuid.New()
		o.CreatedAt = writeTime
		o.UpdatedAt = writeTime
		if o.Status == "" {
			o.Status = domain.InitialStatus(o.Kind)
		}

		seq, err := nextSequentialID(ctx, tx, o.AccountID, o.Kind)
		if err != nil {
			return err
		}
		o.SequentialID = seq

		if err := insertOrder(ctx, tx, o); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE recurrence_profiles SET next_run_date = $1, updated_at = $2 WHERE id = $3;`,
			next, writeTime, profileID,
		)
		if err != nil {
			return fmt.Errorf("advance next_run_date: %w", err)
		}

		order = o
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProfileNotDue) {
			return nil, err
		}
		return nil, fmt.Errorf("generate from profile: %w", err)
	}

	return order, nil
}

// Expire marks the profile expired without generating an order.
func (r *PGRecurrenceRepository) Expire(ctx context.Context, accountID, profileID uuid.UUID) error {
	return r.setTerminalStatus(ctx, accountID, profileID, domain.ProfileExpired)
}

// Cancel is idempotent: cancelling a cancelled profile is a no-op.
func (r *PGRecurrenceRepository) Cancel(ctx context.Context, accountID, profileID uuid.UUID) error {
	return r.setTerminalStatus(ctx, accountID, profileID, domain.ProfileCancelled)
}

func (r *PGRecurrenceRepository) setTerminalStatus(ctx context.Context, accountID, profileID uuid.UUID, status domain.ProfileStatus) error {
	if r.Pool == nil {
		return errors.New("recurrence repository: pool is nil")
	}

	return pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		var current domain.ProfileStatus
		q := `SELECT status FROM recurrence_profiles WHERE account_id = $1 AND id = $2 FOR UPDATE;`
		if err := tx.QueryRow(ctx, q, accountID, profileID).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lookup profile status: %w", err)
		}

		// Terminal states are never overwritten.
		if current != domain.ProfileActive {
			return nil
		}

		_, err := tx.Exec(ctx,
			`UPDATE recurrence_profiles SET status = $1, updated_at = $2 WHERE account_id = $3 AND id = $4;`,
			string(status), time.Now().UTC(), accountID, profileID,
		)
		if err != nil {
			return fmt.Errorf("set profile status: %w", err)
		}
		return nil
	})
}
