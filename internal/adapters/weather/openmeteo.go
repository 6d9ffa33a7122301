package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rental-ops-service/internal/domain"
	"rental-ops-service/internal/platform/obs"
)

// OpenMeteo implements WeatherProvider against the Open-Meteo forecast API.
// No API key is required. Forecasts feed route advisories only, so callers
// treat every failure as "no forecast".
type OpenMeteo struct {
	session *http.Client
	baseURL string
}

func NewOpenMeteo(baseURL string) *OpenMeteo {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com"
	}
	return &OpenMeteo{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

type forecastResponse struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"hourly"`
}

// ForecastAt returns the hourly forecast nearest to the requested instant.
func (w *OpenMeteo) ForecastAt(ctx context.Context, at domain.Coordinates, when time.Time) (_ domain.Forecast, err error) {
	defer obs.Time(ctx, "weather.ForecastAt")(&err)

	day := when.UTC().Format("2006-01-02")

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", at.Lat))
	q.Set("longitude", fmt.Sprintf("%.4f", at.Lon))
	q.Set("hourly", "temperature_2m,weather_code")
	q.Set("timezone", "UTC")
	q.Set("start_date", day)
	q.Set("end_date", day)

	endpoint := w.baseURL + "/v1/forecast?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("create forecast request: %w", err)
	}

	resp, err := w.session.Do(req)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("execute forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return domain.Forecast{}, fmt.Errorf(
			"forecast status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)),
		)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Forecast{}, fmt.Errorf("decode forecast response: %w", err)
	}

	h := decoded.Hourly
	if len(h.Time) == 0 || len(h.Time) != len(h.Temperature) || len(h.Time) != len(h.WeatherCode) {
		return domain.Forecast{}, errors.New("forecast response has no usable hourly data")
	}

	// Hours come back as "2006-01-02T15:04"; match the requested hour,
	// falling back to the nearest one.
	want := when.UTC().Truncate(time.Hour)
	bestIdx := 0
	bestDiff := time.Duration(1<<63 - 1)
	for i, ts := range h.Time {
		t, err := time.Parse("2006-01-02T15:04", ts)
		if err != nil {
			continue
		}
		diff := t.Sub(want)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}

	return domain.Forecast{
		Condition: describeCode(h.WeatherCode[bestIdx]),
		TempC:     h.Temperature[bestIdx],
	}, nil
}

// describeCode maps WMO weather codes to operator-facing Portuguese labels.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "céu limpo"
	case code <= 2:
		return "parcialmente nublado"
	case code == 3:
		return "nublado"
	case code == 45 || code == 48:
		return "nevoeiro"
	case code >= 51 && code <= 57:
		return "garoa"
	case code >= 61 && code <= 67:
		return "chuva"
	case code >= 80 && code <= 82:
		return "pancadas de chuva"
	case code >= 95:
		return "tempestade"
	default:
		return "tempo instável"
	}
}
