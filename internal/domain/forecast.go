package domain

// Forecast is a point-in-time weather summary used for route advisories only,
// never for scheduling decisions.
type Forecast struct {
	Condition string
	TempC     float64
}
