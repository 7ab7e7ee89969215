package weather

import (
	"fmt"
	"time"
)

// MaxForecastEntries caps the number of forecast samples kept per report.
const MaxForecastEntries = 5

// Condition is the coarse weather category used to pick a display icon.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionFog          Condition = "Fog"
	ConditionClouds       Condition = "Clouds"
	ConditionOther        Condition = "Other"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// Location identifies what to fetch: either a city name or a coordinate pair.
// When Coords is set it takes precedence over City.
type Location struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coords,omitempty"`
}

// CityLocation builds a Location for a city name.
func CityLocation(city string) Location {
	return Location{City: city}
}

// CoordsLocation builds a Location for a coordinate pair.
func CoordsLocation(c Coordinates) Location {
	return Location{Coords: &c}
}

// IsCoords reports whether the location is a coordinate pair.
func (l Location) IsCoords() bool {
	return l.Coords != nil
}

// Key returns a canonical string for logging and span attributes.
func (l Location) Key() string {
	if l.Coords != nil {
		return l.Coords.String()
	}
	return l.City
}

// CurrentConditions is the normalized "now" view for a location.
type CurrentConditions struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    int       `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	Visibility  int       `json:"visibilityMeters"`
	WindSpeed   float64   `json:"windSpeed"`
	Sunrise     int64     `json:"sunrise"`
	Sunset      int64     `json:"sunset"`
	Description string    `json:"description"`
	Condition   Condition `json:"condition"`
}

// ForecastEntry is one future sample.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	Humidity    int       `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Condition   Condition `json:"condition"`
}

// Report is the result of one successful operation. It is replaced as a
// whole by the next successful fetch.
type Report struct {
	Location  Location          `json:"location"`
	Current   CurrentConditions `json:"current"`
	Forecast  []ForecastEntry   `json:"forecast"`
	FetchedAt time.Time         `json:"fetchedAt"`
}
