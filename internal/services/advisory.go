package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/logger"
	"rental-ops-service/internal/ports"
)

// Annotator produces best-effort natural-language advisories for a
// finalized route plan. It is purely additive: any upstream failure yields
// an empty advisory, never an error, and its output is for human display
// only. Scheduling decisions never depend on it.
type Annotator struct {
	weather ports.WeatherProvider
	log     *logger.Logger
}

func NewAnnotator(weather ports.WeatherProvider, log *logger.Logger) *Annotator {
	if log == nil {
		log = logger.L
	}
	return &Annotator{weather: weather, log: log}
}

// Annotate builds advisory prose for the route: departure traffic outlook
// plus the forecast at the first stop around its predicted arrival.
func (a *Annotator) Annotate(ctx context.Context, route *domain.OptimizedRoute) string {
	if route == nil || len(route.Stops) == 0 {
		return ""
	}

	var parts []string

	if peakHour(route.BaseDeparture) {
		parts = append(parts, "Saída em horário de pico; considere antecipar a partida.")
	}

	if a.weather != nil {
		first := route.Stops[0]
		if first.Stop.Coord != nil {
			fc, err := a.weather.ForecastAt(ctx, *first.Stop.Coord, first.PredictedArrival)
			if err != nil {
				a.log.Warnw("weather advisory unavailable", "err", err)
			} else {
				parts = append(parts, describeForecast(fc))
			}
		}
	}

	if total := time.Duration(route.TotalDurationSeconds) * time.Second; total > 4*time.Hour {
		parts = append(parts, fmt.Sprintf("Rota longa (%s de deslocamento previsto); planeje pausas.", formatDuration(total)))
	}

	return strings.Join(parts, " ")
}

// ForecastAt exposes the raw point forecast for callers that want the
// structured form. Failures surface as errors here; Annotate is the
// never-fails wrapper.
func (a *Annotator) ForecastAt(ctx context.Context, at domain.Coordinates, when time.Time) (domain.Forecast, error) {
	if a.weather == nil {
		return domain.Forecast{}, fmt.Errorf("forecast: no weather provider configured")
	}
	return a.weather.ForecastAt(ctx, at, when)
}

// peakHour mirrors the dispatcher rule of thumb for urban congestion.
func peakHour(t time.Time) bool {
	h := t.Hour()
	return (h >= 7 && h <= 9) || (h >= 17 && h <= 19)
}

func describeForecast(fc domain.Forecast) string {
	cond := strings.TrimSpace(fc.Condition)
	if cond == "" {
		cond = "tempo estável"
	}
	return fmt.Sprintf("Previsão na primeira parada: %s, %.0f°C.", cond, fc.TempC)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dmin", m)
	}
	return fmt.Sprintf("%dh%02dmin", h, m)
}
