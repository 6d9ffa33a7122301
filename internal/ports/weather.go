package ports

import (
	"context"
	"time"

	"rental-ops-service/internal/domain"
)

// Port for point-in-time weather forecasts. May fail; consumers are
// best-effort and must never propagate failures into route plans.
type WeatherProvider interface {
	ForecastAt(ctx context.Context, at domain.Coordinates, when time.Time) (domain.Forecast, error)
}
