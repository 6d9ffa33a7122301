package directions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/platform/obs"
	"rental-ops-service/internal/ports"
)

// DistanceCache stores origin->destination results keyed by coordinate
// strings. Implementations must be safe for concurrent use.
type DistanceCache interface {
	GetMany(ctx context.Context, origin string, destinations []string) (map[string]ports.DistanceResult, error)
	PutMany(ctx context.Context, origin string, results map[string]ports.DistanceResult) error
}

// ORSProvider implements DirectionsMatrixProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent distance matrix caching
//   - External API calls with bounded retry
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	orsClient
	profile string
	cache   DistanceCache
}

func NewORSProvider(apiKey, baseURL string, cache DistanceCache) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	provider := &ORSProvider{
		orsClient: orsClient{
			session: &http.Client{Timeout: 10 * time.Second},
			apiKey:  apiKey,
			baseURL: baseURL,
		},
		profile: "driving-car",
		cache:   cache,
	}

	return provider, nil
}

// coordKey builds a stable cache key from coordinates. Six decimal places
// is roughly 10cm of precision, well below geocoding accuracy.
func coordKey(c domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}

// Delegate to the batched path to reuse caching and matrix logic.
func (o *ORSProvider) Route(
	ctx context.Context,
	origin domain.Coordinates,
	destination domain.Coordinates,
) (ports.DistanceResult, error) {
	results, err := o.Routes(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, err
	}
	if len(results) != 1 {
		return ports.DistanceResult{}, fmt.Errorf(
			"expected 1 result for %s -> %s; got %d",
			coordKey(origin), coordKey(destination), len(results),
		)
	}
	return results[0], nil
}

// Compute travel metrics from a single origin to many destinations.
// Results are index-aligned with the destinations slice.
func (o *ORSProvider) Routes(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.Routes")(&err)

	if len(destinations) == 0 {
		return []ports.DistanceResult{}, nil
	}

	originKey := coordKey(origin)

	seen := make(map[string]struct{}, len(destinations))
	destKeys := make([]string, 0, len(destinations))
	destCoords := make([]domain.Coordinates, 0, len(destinations))
	for _, d := range destinations {
		k := coordKey(d)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		destKeys = append(destKeys, k)
		destCoords = append(destCoords, d)
	}

	hits := make(map[string]ports.DistanceResult)
	// Check the persistent cache before issuing external API calls.
	if o.cache != nil {
		hits, err = o.cache.GetMany(ctx, originKey, destKeys)
		if err != nil {
			return nil, fmt.Errorf("ORS get distance cache: %w", err)
		}
	}

	missKeys := make([]string, 0, len(destKeys))
	missCoords := make([]domain.Coordinates, 0, len(destKeys))
	for i, k := range destKeys {
		if _, ok := hits[k]; !ok {
			missKeys = append(missKeys, k)
			missCoords = append(missCoords, destCoords[i])
		}
	}

	if len(missKeys) > 0 {
		// Fetch a single origin->many matrix row for all cache misses.
		fetched, err := o.fetchMatrixRow(ctx, origin, missKeys, missCoords)
		if err != nil {
			return nil, fmt.Errorf("fetching matrix row: %w", err)
		}

		for _, k := range missKeys {
			if _, ok := fetched[k]; !ok {
				return nil, fmt.Errorf("ORS matrix did not return destination %s", k)
			}
		}

		if o.cache != nil {
			if err := o.cache.PutMany(ctx, originKey, fetched); err != nil {
				logger.L.Warnw("distance cache write failed", "err", err)
			}
		}

		for k, v := range fetched {
			hits[k] = v
		}
	}

	out := make([]ports.DistanceResult, len(destinations))
	for i, d := range destinations {
		r, ok := hits[coordKey(d)]
		if !ok {
			return nil, fmt.Errorf("missing result for destination %s", coordKey(d))
		}
		out[i] = r
	}

	return out, nil
}
