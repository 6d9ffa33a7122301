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
)

// Postgres-backed implementation of the FleetRepository port.
type PGFleetRepository struct{ Pool *pgxpool.Pool }

func NewPGFleetRepository(pool *pgxpool.Pool) *PGFleetRepository {
	return &PGFleetRepository{Pool: pool}
}

func (r *PGFleetRepository) GetTruck(ctx context.Context, accountID, truckID uuid.UUID) (*domain.Truck, error) {
	if r.Pool == nil {
		return nil, errors.New("fleet repository: pool is nil")
	}

	q := `
	SELECT id, account_id, plate, type_name, base_id, created_at
	FROM trucks
	WHERE account_id = $1 AND id = $2;
	`

	var t domain.Truck
	err := r.Pool.QueryRow(ctx, q, accountID, truckID).Scan(
		&t.ID, &t.AccountID, &t.Plate, &t.TypeName, &t.BaseID, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get truck: %w", err)
	}
	return &t, nil
}

func (r *PGFleetRepository) ListTrucks(ctx context.Context, accountID uuid.UUID) ([]*domain.Truck, error) {
	if r.Pool == nil {
		return nil, errors.New("fleet repository: pool is nil")
	}

	q := `
	SELECT id, account_id, plate, type_name, base_id, created_at
	FROM trucks
	WHERE account_id = $1
	ORDER BY plate;
	`

	rows, err := r.Pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("list trucks: query: %w", err)
	}
	defer rows.Close()

	trucks := make([]*domain.Truck, 0, 16)
	for rows.Next() {
		var t domain.Truck
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Plate, &t.TypeName, &t.BaseID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("list trucks: scan row: %w", err)
		}
		trucks = append(trucks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trucks: row iteration: %w", err)
	}

	return trucks, nil
}

func (r *PGFleetRepository) CreateTruck(ctx context.Context, truck *domain.Truck) error {
	if r.Pool == nil {
		return errors.New("fleet repository: pool is nil")
	}

	if truck.ID == uuid.Nil {
		truck.ID = uuid.New()
	}
	if truck.CreatedAt.IsZero() {
		truck.CreatedAt = time.Now().UTC()
	}

	q := `
	INSERT INTO trucks (id, account_id, plate, type_name, base_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := r.Pool.Exec(ctx, q, truck.ID, truck.AccountID, truck.Plate, truck.TypeName, truck.BaseID, truck.CreatedAt)
	if err != nil {
		return fmt.Errorf("create truck: %w", err)
	}
	return nil
}

func (r *PGFleetRepository) ListTruckTypes(ctx context.Context, accountID uuid.UUID) ([]domain.TruckType, error) {
	if r.Pool == nil {
		return nil, errors.New("fleet repository: pool is nil")
	}

	q := `SELECT id, account_id, name FROM truck_types WHERE account_id = $1 ORDER BY name;`

	rows, err := r.Pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("list truck types: query: %w", err)
	}
	defer rows.Close()

	types := make([]domain.TruckType, 0, 8)
	for rows.Next() {
		var tt domain.TruckType
		if err := rows.Scan(&tt.ID, &tt.AccountID, &tt.Name); err != nil {
			return nil, fmt.Errorf("list truck types: scan row: %w", err)
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list truck types: row iteration: %w", err)
	}

	return types, nil
}

func (r *PGFleetRepository) CreateTruckType(ctx context.Context, tt *domain.TruckType) error {
	if r.Pool == nil {
		return errors.New("fleet repository: pool is nil")
	}

	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}

	q := `
	INSERT INTO truck_types (id, account_id, name)
	VALUES ($1, $2, $3);
	`

	_, err := r.Pool.Exec(ctx, q, tt.ID, tt.AccountID, tt.Name)
	if err != nil {
		return fmt.Errorf("create truck type: %w", err)
	}
	return nil
}

func (r *PGFleetRepository) ListBases(ctx context.Context, accountID uuid.UUID) ([]domain.Base, error) {
	if r.Pool == nil {
		return nil, errors.New("fleet repository: pool is nil")
	}

	q := `SELECT id, account_id, name, address, lon, lat FROM bases WHERE account_id = $1 ORDER BY name;`

	rows, err := r.Pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("list bases: query: %w", err)
	}
	defer rows.Close()

	bases := make([]domain.Base, 0, 8)
	for rows.Next() {
		var b domain.Base
		var lon, lat *float64
		if err := rows.Scan(&b.ID, &b.AccountID, &b.Name, &b.Address, &lon, &lat); err != nil {
			return nil, fmt.Errorf("list bases: scan row: %w", err)
		}
		if lon != nil && lat != nil {
			b.Coord = &domain.Coordinates{Lon: *lon, Lat: *lat}
		}
		bases = append(bases, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bases: row iteration: %w", err)
	}

	return bases, nil
}

func (r *PGFleetRepository) CreateBase(ctx context.Context, b *domain.Base) error {
	if r.Pool == nil {
		return errors.New("fleet repository: pool is nil")
	}

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	var lon, lat *float64
	if b.Coord != nil {
		lon, lat = &b.Coord.Lon, &b.Coord.Lat
	}

	q := `
	INSERT INTO bases (id, account_id, name, address, lon, lat)
	VALUES ($1, $2, $3, $4, $5, $6);
	`

	_, err := r.Pool.Exec(ctx, q, b.ID, b.AccountID, b.Name, b.Address, lon, lat)
	if err != nil {
		return fmt.Errorf("create base: %w", err)
	}
	return nil
}

func (r *PGFleetRepository) ListCostConfigs(ctx context.Context, accountID uuid.UUID) ([]domain.CostConfig, error) {
	if r.Pool == nil {
		return nil, errors.New("fleet repository: pool is nil")
	}

	q := `SELECT id, account_id, base_id, truck_type_id, value FROM cost_configs WHERE account_id = $1;`

	rows, err := r.Pool.Query(ctx, q, accountID)
	if err != nil {
		return nil, fmt.Errorf("list cost configs: query: %w", err)
	}
	defer rows.Close()

	configs := make([]domain.CostConfig, 0, 8)
	for rows.Next() {
		var cc domain.CostConfig
		if err := rows.Scan(&cc.ID, &cc.AccountID, &cc.BaseID, &cc.TruckTypeID, &cc.Value); err != nil {
			return nil, fmt.Errorf("list cost configs: scan row: %w", err)
		}
		configs = append(configs, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cost configs: row iteration: %w", err)
	}

	return configs, nil
}

func (r *PGFleetRepository) CreateCostConfig(ctx context.Context, cfg *domain.CostConfig) error {
	if r.Pool == nil {
		return errors.New("fleet repository: pool is nil")
	}

	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}

	q := `
	INSERT INTO cost_configs (id, account_id, base_id, truck_type_id, value)
	VALUES ($1, $2, $3, $4, $5);
	`

	_, err := r.Pool.Exec(ctx, q, cfg.ID, cfg.AccountID, cfg.BaseID, cfg.TruckTypeID, cfg.Value)
	if err != nil {
		return fmt.Errorf("create cost config: %w", err)
	}
	return nil
}
