package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-widget/internal/weather"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"
)

type AppConfig struct {
	// Provider selects the weather API backend.
	Provider string `validate:"oneof=openweather openmeteo"`

	OpenWeatherAPIKey  string `validate:"required_if=Provider openweather"`
	OpenWeatherBaseURL string `validate:"omitempty,url"`
	OpenMeteoBaseURL   string `validate:"omitempty,url"`

	// GeocoderAPIKey enables Google geocoding (Open-Meteo city lookups and
	// LocationAddress).
	GeocoderAPIKey  string
	GeocoderBaseURL string `validate:"omitempty,url"`

	HTTPTimeout  time.Duration `validate:"gt=0"`
	FetchTimeout time.Duration `validate:"gt=0"`

	// HistoryDBPath is the sqlite file holding search history; empty keeps it
	// in memory.
	HistoryDBPath string

	// Location answers "use my location". Coordinates win over the address.
	Location        *weather.Coordinates
	LocationAddress string

	// RefreshInterval re-fetches the shown location periodically (0 = off).
	RefreshInterval time.Duration `validate:"gte=0"`

	DiscardStaleResults bool

	// TimeZone is used to display forecast and sun times.
	TimeZone *time.Location `validate:"required"`

	ZipkinEndpoint string `validate:"omitempty,url"`

	LogLevel string `validate:"oneof=debug info warn error"`

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Provider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", ProviderOpenWeather))
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.OpenMeteoBaseURL = os.Getenv("OPENMETEO_BASE_URL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.GeocoderBaseURL = os.Getenv("GEOCODER_BASE_URL")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0"); err != nil {
		return nil, err
	}

	cfg.HistoryDBPath = os.Getenv("HISTORY_DB_PATH")

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc
	cfg.LocationAddress = os.Getenv("LOCATION_ADDRESS")

	cfg.DiscardStaleResults = getenvBool("DISCARD_STALE_RESULTS", true)

	tz, err := time.LoadLocation(getenvDefault("TIME_ZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE: %w", err)
	}
	cfg.TimeZone = tz

	cfg.ZipkinEndpoint = os.Getenv("ZIPKIN_ENDPOINT")
	cfg.LogLevel = strings.ToLower(getenvDefault("LOG_LEVEL", "info"))
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadLocation() (*weather.Coordinates, error) {
	latStr := os.Getenv("LOCATION_LAT")
	lonStr := os.Getenv("LOCATION_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("LOCATION_LAT and LOCATION_LON must be set together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, fmt.Errorf("invalid LOCATION_LAT %q", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("invalid LOCATION_LON %q", lonStr)
	}
	return &weather.Coordinates{Lat: lat, Lon: lon}, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
