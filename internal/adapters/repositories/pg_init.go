package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Initialize the Postgres schema.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return errors.New("init schema: pool is nil")
	}

	createSequenceCountersQuery := `
	CREATE TABLE IF NOT EXISTS sequence_counters (
		account_id UUID NOT NULL,
		kind TEXT NOT NULL,
		value BIGINT NOT NULL,
		PRIMARY KEY (account_id, kind)
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		kind TEXT NOT NULL,
		sequential_id BIGINT NOT NULL,
		recurrence_profile_id UUID,
		client_name TEXT NOT NULL,
		assignee_name TEXT NOT NULL DEFAULT '',
		truck_id UUID,
		origin_address TEXT NOT NULL DEFAULT '',
		origin_lon DOUBLE PRECISION,
		origin_lat DOUBLE PRECISION,
		destination_address TEXT NOT NULL DEFAULT '',
		destination_lon DOUBLE PRECISION,
		destination_lat DOUBLE PRECISION,
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ,
		status TEXT NOT NULL,
		billing_type TEXT NOT NULL,
		value NUMERIC(12,2) NOT NULL,
		additional_costs JSONB NOT NULL DEFAULT '[]',
		travel_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (account_id, kind, sequential_id)
	);
	`

	createOrdersStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_account_status
	ON orders(account_id, status);
	`

	createProfilesQuery := `
	CREATE TABLE IF NOT EXISTS recurrence_profiles (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		kind TEXT NOT NULL,
		frequency TEXT NOT NULL,
		days_of_week INT[] NOT NULL DEFAULT '{}',
		time_of_day TEXT NOT NULL,
		end_date TIMESTAMPTZ,
		billing_type TEXT NOT NULL,
		status TEXT NOT NULL,
		next_run_date TIMESTAMPTZ NOT NULL,
		original_order_id UUID NOT NULL,
		template JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	`

	createProfilesDueIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_profiles_status_next_run
	ON recurrence_profiles(status, next_run_date);
	`

	createBasesQuery := `
	CREATE TABLE IF NOT EXISTS bases (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		name TEXT NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		lon DOUBLE PRECISION,
		lat DOUBLE PRECISION
	);
	`

	createTruckTypesQuery := `
	CREATE TABLE IF NOT EXISTS truck_types (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		name TEXT NOT NULL,
		UNIQUE (account_id, name)
	);
	`

	createTrucksQuery := `
	CREATE TABLE IF NOT EXISTS trucks (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		plate TEXT NOT NULL,
		type_name TEXT NOT NULL,
		base_id UUID,
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createCostConfigsQuery := `
	CREATE TABLE IF NOT EXISTS cost_configs (
		id UUID PRIMARY KEY,
		account_id UUID NOT NULL,
		base_id UUID,
		truck_type_id UUID NOT NULL,
		value NUMERIC(12,2) NOT NULL
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	statements := []string{
		createSequenceCountersQuery,
		createOrdersQuery,
		createOrdersStatusIndexQuery,
		createProfilesQuery,
		createProfilesDueIndexQuery,
		createBasesQuery,
		createTruckTypesQuery,
		createTrucksQuery,
		createCostConfigsQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
	}

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, stmt := range statements {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("exec statement #%d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	return nil
}

type baseSeed struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Lon     *float64 `json:"lon"`
	Lat     *float64 `json:"lat"`
}

type truckTypeSeed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type truckSeed struct {
	ID       string `json:"id"`
	Plate    string `json:"plate"`
	TypeName string `json:"type_name"`
	BaseID   string `json:"base_id"`
}

type costConfigSeed struct {
	ID          string `json:"id"`
	BaseID      string `json:"base_id"`
	TruckTypeID string `json:"truck_type_id"`
	Value       string `json:"value"`
}

// FleetSeed is the JSON shape consumed by SeedFleetFromJSON.
type FleetSeed struct {
	AccountID   string           `json:"account_id"`
	Bases       []baseSeed       `json:"bases"`
	TruckTypes  []truckTypeSeed  `json:"truck_types"`
	Trucks      []truckSeed      `json:"trucks"`
	CostConfigs []costConfigSeed `json:"cost_configs"`
}

// Populate fleet reference data from a JSON file. Rows are upserted by id
// so reseeding is safe.
func SeedFleetFromJSON(ctx context.Context, pool *pgxpool.Pool, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed fleet: parse json: %w", err)
	}

	accountID, err := uuid.Parse(seed.AccountID)
	if err != nil {
		return fmt.Errorf("seed fleet: parse account_id: %w", err)
	}

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		for i, b := range seed.Bases {
			id, err := uuid.Parse(b.ID)
			if err != nil {
				return fmt.Errorf("base #%d: parse id: %w", i+1, err)
			}
			if strings.TrimSpace(b.Name) == "" {
				return fmt.Errorf("base #%d: name cannot be empty", i+1)
			}
			_, err = tx.Exec(ctx, `
			INSERT INTO bases (id, account_id, name, address, lon, lat)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
				address = EXCLUDED.address,
				lon = EXCLUDED.lon,
				lat = EXCLUDED.lat;
			`, id, accountID, b.Name, b.Address, b.Lon, b.Lat)
			if err != nil {
				return fmt.Errorf("insert base %q: %w", b.Name, err)
			}
		}

		for i, tt := range seed.TruckTypes {
			id, err := uuid.Parse(tt.ID)
			if err != nil {
				return fmt.Errorf("truck type #%d: parse id: %w", i+1, err)
			}
			if strings.TrimSpace(tt.Name) == "" {
				return fmt.Errorf("truck type #%d: name cannot be empty", i+1)
			}
			_, err = tx.Exec(ctx, `
			INSERT INTO truck_types (id, account_id, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name;
			`, id, accountID, tt.Name)
			if err != nil {
				return fmt.Errorf("insert truck type %q: %w", tt.Name, err)
			}
		}

		for i, t := range seed.Trucks {
			id, err := uuid.Parse(t.ID)
			if err != nil {
				return fmt.Errorf("truck #%d: parse id: %w", i+1, err)
			}
			var baseID *uuid.UUID
			if t.BaseID != "" {
				parsed, err := uuid.Parse(t.BaseID)
				if err != nil {
					return fmt.Errorf("truck #%d: parse base_id: %w", i+1, err)
				}
				baseID = &parsed
			}
			_, err = tx.Exec(ctx, `
			INSERT INTO trucks (id, account_id, plate, type_name, base_id, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (id) DO UPDATE
			SET plate = EXCLUDED.plate,
				type_name = EXCLUDED.type_name,
				base_id = EXCLUDED.base_id;
			`, id, accountID, t.Plate, t.TypeName, baseID)
			if err != nil {
				return fmt.Errorf("insert truck %q: %w", t.Plate, err)
			}
		}

		for i, cc := range seed.CostConfigs {
			id, err := uuid.Parse(cc.ID)
			if err != nil {
				return fmt.Errorf("cost config #%d: parse id: %w", i+1, err)
			}
			typeID, err := uuid.Parse(cc.TruckTypeID)
			if err != nil {
				return fmt.Errorf("cost config #%d: parse truck_type_id: %w", i+1, err)
			}
			var baseID *uuid.UUID
			if cc.BaseID != "" {
				parsed, err := uuid.Parse(cc.BaseID)
				if err != nil {
					return fmt.Errorf("cost config #%d: parse base_id: %w", i+1, err)
				}
				baseID = &parsed
			}
			value, err := decimal.NewFromString(cc.Value)
			if err != nil {
				return fmt.Errorf("cost config #%d: parse value: %w", i+1, err)
			}
			_, err = tx.Exec(ctx, `
			INSERT INTO cost_configs (id, account_id, base_id, truck_type_id, value)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE
			SET base_id = EXCLUDED.base_id,
				truck_type_id = EXCLUDED.truck_type_id,
				value = EXCLUDED.value;
			`, id, accountID, baseID, typeID, value)
			if err != nil {
				return fmt.Errorf("insert cost config #%d: %w", i+1, err)
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}

	return nil
}
