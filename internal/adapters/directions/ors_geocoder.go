package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// GeocodeCache stores address -> coordinate mappings. Implementations must
// be safe for concurrent use.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

// ORSGeocoder resolves street addresses via OpenRouteService with a
// persistent cache in front of the external calls.
type ORSGeocoder struct {
	orsClient
	country string
	cache   GeocodeCache
}

func NewORSGeocoder(apiKey, baseURL string, cache GeocodeCache) (*ORSGeocoder, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &ORSGeocoder{
		orsClient: orsClient{
			session: &http.Client{Timeout: 10 * time.Second},
			apiKey:  apiKey,
			baseURL: baseURL,
		},
		country: "BR",
		cache:   cache,
	}, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (g *ORSGeocoder) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves a single address, consulting the cache first. Returns
// ports.ErrNoGeocodeResult when the address matches nothing.
func (g *ORSGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := g.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("geocode cache read: %w", err)
		}
		if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	endpoint := g.baseURL + "/geocode/search"

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := g.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", g.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, ports.ErrNoGeocodeResult)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}

	out := domain.Coordinates{Lon: coords[0], Lat: coords[1]}

	if g.cache != nil {
		if err := g.cache.PutMany(ctx, map[string]domain.Coordinates{norm: out}); err != nil {
			logger.L.Warnw("geocode cache write failed", "err", err)
		}
	}

	return out, nil
}
