package ports

import (
	"context"
	"errors"

	"rental-ops-service/internal/domain"
)

// ErrNoGeocodeResult indicates the address could not be resolved. Callers
// treat this as "no coordinates", not a failure.
var ErrNoGeocodeResult = errors.New("no geocode result")

// Port for resolving a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
