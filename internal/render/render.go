// Package render turns widget views into display values: converted and
// formatted temperatures, icon identifiers and a plain-text rendering.
package render

import (
	"math"
	"strconv"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
)

// IconSize is the size variant of an icon.
type IconSize string

const (
	IconSmall IconSize = "sm"
	IconLarge IconSize = "lg"
)

// ToDisplayTemp converts a Celsius value for display.
func ToDisplayTemp(celsius float64, isCelsius bool) float64 {
	if isCelsius {
		return celsius
	}
	return celsius*9/5 + 32
}

// UnitSymbol returns "°C" or "°F".
func UnitSymbol(isCelsius bool) string {
	if isCelsius {
		return "°C"
	}
	return "°F"
}

// FormatTemp rounds the converted value half up and appends the unit.
func FormatTemp(celsius float64, isCelsius bool) string {
	v := math.Floor(ToDisplayTemp(celsius, isCelsius) + 0.5)
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', 0, 64) + UnitSymbol(isCelsius)
}

// IconFor returns the icon identifier for a condition. Unrecognized values
// get the cloud icon.
func IconFor(c weather.Condition, size IconSize) string {
	var name string
	switch c {
	case weather.ConditionClear:
		name = "wi-day-sunny"
	case weather.ConditionRain:
		name = "wi-rain"
	case weather.ConditionSnow:
		name = "wi-snow"
	case weather.ConditionThunderstorm:
		name = "wi-thunderstorm"
	case weather.ConditionFog:
		name = "wi-fog"
	default:
		name = "wi-cloudy"
	}
	if size == "" {
		size = IconLarge
	}
	return name + "-" + string(size)
}

// Glyph is the text-mode stand-in for IconFor.
func Glyph(c weather.Condition) string {
	switch c {
	case weather.ConditionClear:
		return "☀"
	case weather.ConditionRain:
		return "🌧"
	case weather.ConditionSnow:
		return "❄"
	case weather.ConditionThunderstorm:
		return "⛈"
	case weather.ConditionFog:
		return "🌫"
	default:
		return "☁"
	}
}

// Greeting returns a time-of-day greeting for t's local hour.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
