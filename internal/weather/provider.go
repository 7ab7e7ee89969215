package weather

import (
	"context"
)

// Provider abstracts a weather API (e.g. OpenWeatherMap, Open-Meteo).
// Both calls must return a *FetchError on failure so callers can classify it.
type Provider interface {
	Name() string
	Current(ctx context.Context, loc Location) (CurrentConditions, error)
	Forecast(ctx context.Context, loc Location) ([]ForecastEntry, error)
}
