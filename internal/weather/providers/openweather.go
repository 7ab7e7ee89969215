package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-widget/internal/common"
	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owCurrentPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Weather []owCondition `json:"weather"`
}

type owForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Weather []owCondition `json:"weather"`
	} `json:"list"`
}

// Current fetches current conditions from /weather.
func (p *OpenWeatherProvider) Current(ctx context.Context, loc weather.Location) (weather.CurrentConditions, error) {
	u, err := p.endpoint("weather", loc)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload owCurrentPayload
	if err := getJSON(ctx, p.client, p.circuit, "openweather.current", u, &payload); err != nil {
		return weather.CurrentConditions{}, err
	}

	var description string
	if len(payload.Weather) > 0 {
		description = payload.Weather[0].Description
	}

	return weather.CurrentConditions{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		Visibility:  payload.Visibility,
		WindSpeed:   payload.Wind.Speed,
		Sunrise:     payload.Sys.Sunrise,
		Sunset:      payload.Sys.Sunset,
		Description: description,
		Condition:   mapOpenWeatherCondition(payload.Weather),
	}, nil
}

// Forecast fetches the 3-hourly forecast from /forecast. The full list is
// returned; the service keeps the first weather.MaxForecastEntries.
func (p *OpenWeatherProvider) Forecast(ctx context.Context, loc weather.Location) ([]weather.ForecastEntry, error) {
	u, err := p.endpoint("forecast", loc)
	if err != nil {
		return nil, err
	}

	var payload owForecastPayload
	if err := getJSON(ctx, p.client, p.circuit, "openweather.forecast", u, &payload); err != nil {
		return nil, err
	}

	out := make([]weather.ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		out = append(out, weather.ForecastEntry{
			Timestamp:   time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			Humidity:    item.Main.Humidity,
			WindSpeed:   item.Wind.Speed,
			Condition:   mapOpenWeatherCondition(item.Weather),
		})
	}
	return out, nil
}

func (p *OpenWeatherProvider) endpoint(path string, loc weather.Location) (string, error) {
	if p.apiKey == "" {
		return "", weather.NewNetworkError(fmt.Errorf("openweather api key is not configured"))
	}

	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	if loc.Coords != nil {
		values.Set("lat", strconv.FormatFloat(loc.Coords.Lat, 'f', -1, 64))
		values.Set("lon", strconv.FormatFloat(loc.Coords.Lon, 'f', -1, 64))
	} else {
		values.Set("q", loc.City)
	}

	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode()), nil
}

func mapOpenWeatherCondition(items []owCondition) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionOther
	}
	switch m := items[0].Main; {
	case m == "Clear":
		return weather.ConditionClear
	case m == "Clouds":
		return weather.ConditionClouds
	case m == "Rain" || m == "Drizzle":
		return weather.ConditionRain
	case m == "Snow":
		return weather.ConditionSnow
	case m == "Thunderstorm":
		return weather.ConditionThunderstorm
	case common.HasAny(m, "Fog", "Mist", "Haze", "Smoke"):
		return weather.ConditionFog
	default:
		return weather.ConditionOther
	}
}
