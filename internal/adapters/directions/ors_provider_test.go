package directions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/ports"
)

type memDistanceCache struct {
	mu sync.Mutex
	m  map[string]ports.DistanceResult
}

func newMemDistanceCache() *memDistanceCache {
	return &memDistanceCache{m: map[string]ports.DistanceResult{}}
}

func (c *memDistanceCache) GetMany(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]ports.DistanceResult{}
	for _, d := range destinations {
		if r, ok := c.m[origin+"|"+d]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memDistanceCache) PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for d, r := range results {
		c.m[origin+"|"+d] = r
	}
	return nil
}

func TestRoutesMatrixAndCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v2/matrix/driving-car" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization = %q; want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"distances":[[1500.4,2200.0]],"durations":[[300.6,410.0]]}`))
	}))
	defer srv.Close()

	cache := newMemDistanceCache()
	p, err := NewORSProvider("test-key", srv.URL, cache)
	if err != nil {
		t.Fatalf("NewORSProvider: %v", err)
	}

	origin := domain.Coordinates{Lon: -46.63, Lat: -23.55}
	dests := []domain.Coordinates{
		{Lon: -46.61, Lat: -23.51},
		{Lon: -46.70, Lat: -23.60},
	}

	results, err := p.Routes(context.Background(), origin, dests)
	if err != nil {
		t.Fatalf("Routes: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results; want 2", len(results))
	}
	if results[0].DistanceMeters != 1500 || results[0].DurationSeconds != 301 {
		t.Errorf("results[0] = %+v; want 1500m/301s", results[0])
	}
	if results[1].DistanceMeters != 2200 || results[1].DurationSeconds != 410 {
		t.Errorf("results[1] = %+v; want 2200m/410s", results[1])
	}
	if calls != 1 {
		t.Fatalf("matrix calls = %d; want 1", calls)
	}

	// Second lookup must be served entirely from the cache.
	if _, err := p.Routes(context.Background(), origin, dests); err != nil {
		t.Fatalf("Routes (cached): %v", err)
	}
	if calls != 1 {
		t.Errorf("matrix calls after cached lookup = %d; want 1", calls)
	}
}

func TestRoutesRetriesOnceOn503(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"distances":[[900.0]],"durations":[[120.0]]}`))
	}))
	defer srv.Close()

	p, err := NewORSProvider("test-key", srv.URL, nil)
	if err != nil {
		t.Fatalf("NewORSProvider: %v", err)
	}

	r, err := p.Route(context.Background(),
		domain.Coordinates{Lon: -46.63, Lat: -23.55},
		domain.Coordinates{Lon: -46.61, Lat: -23.51})
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if r.DistanceMeters != 900 || r.DurationSeconds != 120 {
		t.Errorf("result = %+v; want 900m/120s", r)
	}
	if calls != 2 {
		t.Errorf("calls = %d; want 2 (one retry)", calls)
	}
}

func TestRouteGivesUpAfterSecondFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewORSProvider("test-key", srv.URL, nil)
	if err != nil {
		t.Fatalf("NewORSProvider: %v", err)
	}

	_, err = p.Route(context.Background(),
		domain.Coordinates{Lon: -46.63, Lat: -23.55},
		domain.Coordinates{Lon: -46.61, Lat: -23.51})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 2 {
		t.Errorf("calls = %d; want exactly 2", calls)
	}
}

func TestGeocodeNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("text"); got != "Rua Inexistente 1" {
			t.Errorf("text = %q", got)
		}
		w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	g, err := NewORSGeocoder("test-key", srv.URL, nil)
	if err != nil {
		t.Fatalf("NewORSGeocoder: %v", err)
	}

	_, err = g.Geocode(context.Background(), "Rua  Inexistente   1")
	if !errors.Is(err, ports.ErrNoGeocodeResult) {
		t.Errorf("err = %v; want ErrNoGeocodeResult", err)
	}
}
