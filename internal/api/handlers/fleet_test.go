package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
)

type stubFleet struct {
	trucks  map[uuid.UUID]*domain.Truck
	types   []domain.TruckType
	bases   []domain.Base
	configs []domain.CostConfig
}

func newStubFleet() *stubFleet {
	return &stubFleet{trucks: map[uuid.UUID]*domain.Truck{}}
}

func (s *stubFleet) GetTruck(ctx context.Context, accountID, truckID uuid.UUID) (*domain.Truck, error) {
	t, ok := s.trucks[truckID]
	if !ok || t.AccountID != accountID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (s *stubFleet) ListTrucks(ctx context.Context, accountID uuid.UUID) ([]*domain.Truck, error) {
	var out []*domain.Truck
	for _, t := range s.trucks {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubFleet) CreateTruck(ctx context.Context, truck *domain.Truck) error {
	if truck.ID == uuid.Nil {
		truck.ID = uuid.New()
	}
	s.trucks[truck.ID] = truck
	return nil
}

func (s *stubFleet) ListTruckTypes(ctx context.Context, accountID uuid.UUID) ([]domain.TruckType, error) {
	var out []domain.TruckType
	for _, tt := range s.types {
		if tt.AccountID == accountID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (s *stubFleet) CreateTruckType(ctx context.Context, tt *domain.TruckType) error {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	s.types = append(s.types, *tt)
	return nil
}

func (s *stubFleet) ListBases(ctx context.Context, accountID uuid.UUID) ([]domain.Base, error) {
	var out []domain.Base
	for _, b := range s.bases {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *stubFleet) CreateBase(ctx context.Context, b *domain.Base) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.bases = append(s.bases, *b)
	return nil
}

func (s *stubFleet) ListCostConfigs(ctx context.Context, accountID uuid.UUID) ([]domain.CostConfig, error) {
	var out []domain.CostConfig
	for _, c := range s.configs {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubFleet) CreateCostConfig(ctx context.Context, cfg *domain.CostConfig) error {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	s.configs = append(s.configs, *cfg)
	return nil
}

func newFleetServer(repo ports.FleetRepository) *http.ServeMux {
	h := &FleetHandler{Repo: repo}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /fleet/truck-types", h.ListTruckTypes)
	mux.HandleFunc("POST /fleet/truck-types", h.CreateTruckType)
	mux.HandleFunc("GET /fleet/bases", h.ListBases)
	mux.HandleFunc("POST /fleet/bases", h.CreateBase)
	return mux
}

func TestCreateAndListTruckTypes(t *testing.T) {
	mux := newFleetServer(newStubFleet())
	account := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/fleet/truck-types", strings.NewReader(`{"name":"Poliguindaste"}`))
	req.Header.Set("X-Account-ID", account.String())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/fleet/truck-types", nil)
	req.Header.Set("X-Account-ID", account.String())
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d; want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"Poliguindaste"`) {
		t.Errorf("list missing created type: %s", rec.Body.String())
	}
}

func TestCreateTruckTypeRequiresName(t *testing.T) {
	mux := newFleetServer(newStubFleet())

	req := httptest.NewRequest(http.MethodPost, "/fleet/truck-types", strings.NewReader(`{}`))
	req.Header.Set("X-Account-ID", uuid.NewString())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestCreateAndListBases(t *testing.T) {
	mux := newFleetServer(newStubFleet())
	account := uuid.New()

	body := `{"name":"Matriz","address":"Av. Central 1","coord":{"lon":-46.63,"lat":-23.55}}`
	req := httptest.NewRequest(http.MethodPost, "/fleet/bases", strings.NewReader(body))
	req.Header.Set("X-Account-ID", account.String())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201 (body: %s)", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/fleet/bases", nil)
	req.Header.Set("X-Account-ID", account.String())
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d; want 200", rec.Code)
	}
	got := rec.Body.String()
	if !strings.Contains(got, `"name":"Matriz"`) || !strings.Contains(got, `"lat":-23.55`) {
		t.Errorf("list missing created base: %s", got)
	}
}
