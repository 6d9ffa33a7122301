package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rental-ops-service/internal/domain"
)

type stubWeather struct {
	fc  domain.Forecast
	err error
}

func (s *stubWeather) ForecastAt(ctx context.Context, at domain.Coordinates, when time.Time) (domain.Forecast, error) {
	return s.fc, s.err
}

func planForAdvisory(departHour int) *domain.OptimizedRoute {
	coord := &domain.Coordinates{Lon: -46.61, Lat: -23.51}
	depart := time.Date(2026, 1, 5, departHour, 0, 0, 0, time.UTC)
	return &domain.OptimizedRoute{
		BaseDeparture: depart,
		Stops: []domain.PlannedStop{
			{Stop: domain.Stop{Coord: coord}, PredictedArrival: depart.Add(30 * time.Minute)},
		},
		TotalDurationSeconds: 1800,
	}
}

func TestAnnotateIncludesForecast(t *testing.T) {
	a := NewAnnotator(&stubWeather{fc: domain.Forecast{Condition: "chuva moderada", TempC: 22}}, nil)

	got := a.Annotate(context.Background(), planForAdvisory(11))
	if !strings.Contains(got, "chuva moderada") || !strings.Contains(got, "22°C") {
		t.Fatalf("advisory missing forecast: %q", got)
	}
}

func TestAnnotateMentionsPeakHourDeparture(t *testing.T) {
	a := NewAnnotator(&stubWeather{fc: domain.Forecast{Condition: "céu limpo", TempC: 25}}, nil)

	got := a.Annotate(context.Background(), planForAdvisory(8))
	if !strings.Contains(got, "pico") {
		t.Fatalf("advisory missing peak-hour note: %q", got)
	}

	got = a.Annotate(context.Background(), planForAdvisory(11))
	if strings.Contains(got, "pico") {
		t.Fatalf("off-peak advisory mentions peak hour: %q", got)
	}
}

func TestAnnotateNeverFails(t *testing.T) {
	// A broken weather upstream must degrade to a partial (or empty)
	// advisory, never an error or a panic.
	a := NewAnnotator(&stubWeather{err: errors.New("upstream 503")}, nil)
	if got := a.Annotate(context.Background(), planForAdvisory(11)); strings.Contains(got, "503") {
		t.Fatalf("advisory leaked upstream error: %q", got)
	}

	a = NewAnnotator(nil, nil)
	_ = a.Annotate(context.Background(), planForAdvisory(11))
	if got := a.Annotate(context.Background(), nil); got != "" {
		t.Fatalf("nil route advisory = %q, want empty", got)
	}
}
