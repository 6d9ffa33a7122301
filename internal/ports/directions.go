package ports

import (
	"context"

	"rental-ops-service/internal/domain"
)

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving driving distance and duration between coordinates.
// Implementations may fail per-call; the route sequencer degrades the
// affected leg instead of aborting.
type DirectionsProvider interface {
	// Return travel distance and estimated duration between two points.
	Route(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}

// Optional extension of DirectionsProvider that supports batched lookups
// from one origin to many destinations.
type DirectionsMatrixProvider interface {
	DirectionsProvider
	// Return results indexed to match the destinations slice.
	Routes(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) ([]DistanceResult, error)
}
