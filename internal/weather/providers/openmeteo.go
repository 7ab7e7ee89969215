package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultOpenMeteoBaseURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

// CityResolver turns a city name into coordinates. Open-Meteo only accepts
// coordinates, so city searches need one.
type CityResolver interface {
	Resolve(ctx context.Context, city string) (weather.Coordinates, error)
}

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
// It needs no API key.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
	resolver CityResolver

	mu       sync.Mutex
	resolved map[string]weather.Coordinates
}

// NewOpenMeteoProvider creates the provider. resolver may be nil, in which
// case city searches fail as not found.
func NewOpenMeteoProvider(client *http.Client, baseURL string, resolver CityResolver) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoBaseURL
	}
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		client:   client,
		circuit:  newCircuitBreaker("openmeteo"),
		resolver: resolver,
		resolved: make(map[string]weather.Coordinates),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type omPayload struct {
	Current struct {
		Time        int64   `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		FeelsLike   float64 `json:"apparent_temperature"`
		Pressure    float64 `json:"pressure_msl"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		Visibility  float64 `json:"visibility"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time        []int64   `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
		WeatherCode []int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Sunrise []int64 `json:"sunrise"`
		Sunset  []int64 `json:"sunset"`
	} `json:"daily"`
}

// Current fetches current conditions.
func (p *OpenMeteoProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	coords, err := p.coordinates(ctx, loc)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	values := p.baseValues(coords)
	values.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,pressure_msl,wind_speed_10m,visibility,weather_code")
	values.Set("daily", "sunrise,sunset")
	values.Set("forecast_days", "1")

	var payload omPayload
	if err := getJSON(ctx, p.client, p.circuit, "openmeteo.current", p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	city := loc.City
	if city == "" {
		city = coords.String()
	}
	cond := mapOpenMeteoCondition(payload.Current.WeatherCode)

	out := weather.CurrentConditions{
		City:        city,
		Temperature: payload.Current.Temperature,
		FeelsLike:   payload.Current.FeelsLike,
		Humidity:    int(payload.Current.Humidity),
		Pressure:    payload.Current.Pressure,
		Visibility:  int(payload.Current.Visibility),
		WindSpeed:   payload.Current.WindSpeed,
		Description: describeOpenMeteoCode(payload.Current.WeatherCode),
		Condition:   cond,
	}
	if len(payload.Daily.Sunrise) > 0 {
		out.Sunrise = payload.Daily.Sunrise[0]
	}
	if len(payload.Daily.Sunset) > 0 {
		out.Sunset = payload.Daily.Sunset[0]
	}
	return out, nil
}

// Forecast fetches hourly samples later than the current observation.
func (p *OpenMeteoProvider) Forecast(ctx context.Context, loc weather.Location) ([]weather.ForecastEntry, error) {
	coords, err := p.coordinates(ctx, loc)
	if err != nil {
		return nil, err
	}

	values := p.baseValues(coords)
	values.Set("current", "temperature_2m")
	values.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	values.Set("forecast_days", "2")

	var payload omPayload
	if err := getJSON(ctx, p.client, p.circuit, "openmeteo.forecast", p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.Humidity) != n || len(h.WindSpeed) != n || len(h.WeatherCode) != n {
		return nil, weather.NewNetworkError(fmt.Errorf("openmeteo hourly arrays have mismatched lengths"))
	}

	out := make([]weather.ForecastEntry, 0, weather.MaxForecastEntries)
	for i := 0; i < n; i++ {
		if h.Time[i] <= payload.Current.Time {
			continue
		}
		out = append(out, weather.ForecastEntry{
			Timestamp:   time.Unix(h.Time[i], 0).UTC(),
			Temperature: h.Temperature[i],
			Humidity:    int(h.Humidity[i]),
			WindSpeed:   h.WindSpeed[i],
			Condition:   mapOpenMeteoCondition(h.WeatherCode[i]),
		})
	}
	return out, nil
}

func (p *OpenMeteoProvider) baseValues(c weather.Coordinates) url.Values {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	values.Set("timeformat", "unixtime")
	values.Set("timezone", "UTC")
	values.Set("wind_speed_unit", "ms")
	return values
}

func (p *OpenMeteoProvider) coordinates(ctx context.Context, loc weather.Location) (weather.Coordinates, error) {
	if loc.Coords != nil {
		return *loc.Coords, nil
	}
	if p.resolver == nil {
		return weather.Coordinates{}, &weather.FetchError{
			Kind: weather.KindNotFound,
			Err:  fmt.Errorf("openmeteo cannot resolve city %q without a geocoder", loc.City),
		}
	}

	key := strings.ToLower(strings.TrimSpace(loc.City))
	p.mu.Lock()
	c, ok := p.resolved[key]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	c, err := p.resolver.Resolve(ctx, loc.City)
	if err != nil {
		return weather.Coordinates{}, err
	}

	p.mu.Lock()
	p.resolved[key] = c
	p.mu.Unlock()
	return c, nil
}

func mapOpenMeteoCondition(code int) weather.Condition {
	// Mapping based on WMO weather interpretation codes.
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionClouds
	case code == 45 || code == 48:
		return weather.ConditionFog
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95 && code <= 99:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionOther
	}
}

func describeOpenMeteoCode(code int) string {
	switch mapOpenMeteoCondition(code) {
	case weather.ConditionClear:
		return "clear sky"
	case weather.ConditionClouds:
		return "cloudy"
	case weather.ConditionFog:
		return "fog"
	case weather.ConditionRain:
		return "rain"
	case weather.ConditionSnow:
		return "snow"
	case weather.ConditionThunderstorm:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
