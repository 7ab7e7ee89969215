package render

import (
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

func TestToDisplayTemp(t *testing.T) {
	if got := ToDisplayTemp(0, false); got != 32 {
		t.Fatalf("0C: expected 32F, got %v", got)
	}
	if got := ToDisplayTemp(100, false); got != 212 {
		t.Fatalf("100C: expected 212F, got %v", got)
	}
	for _, c := range []float64{-40, 0, 21.5, 100} {
		once := ToDisplayTemp(c, true)
		if once != c || ToDisplayTemp(once, true) != once {
			t.Fatalf("celsius flag must be identity for %v", c)
		}
	}
	if got := ToDisplayTemp(-40, false); got != -40 {
		t.Fatalf("-40C: expected -40F, got %v", got)
	}
}

func TestFormatTemp(t *testing.T) {
	cases := []struct {
		c       float64
		celsius bool
		want    string
	}{
		{20, true, "20°C"},
		{20, false, "68°F"},
		{22.5, true, "23°C"},
		{-0.4, true, "0°C"},
		{-0.5, true, "0°C"},
		{-1.6, true, "-2°C"},
	}
	for _, tc := range cases {
		if got := FormatTemp(tc.c, tc.celsius); got != tc.want {
			t.Errorf("FormatTemp(%v, %v): expected %q, got %q", tc.c, tc.celsius, tc.want, got)
		}
	}
}

func TestIconFor(t *testing.T) {
	cases := map[weather.Condition]string{
		weather.ConditionClear:        "wi-day-sunny-lg",
		weather.ConditionRain:         "wi-rain-lg",
		weather.ConditionSnow:         "wi-snow-lg",
		weather.ConditionThunderstorm: "wi-thunderstorm-lg",
		weather.ConditionFog:          "wi-fog-lg",
		weather.ConditionClouds:       "wi-cloudy-lg",
		weather.ConditionOther:        "wi-cloudy-lg",
		weather.Condition("Tornado"):  "wi-cloudy-lg",
	}
	for c, want := range cases {
		if got := IconFor(c, IconLarge); got != want {
			t.Errorf("%s: expected %s, got %s", c, want, got)
		}
	}
	if got := IconFor(weather.ConditionRain, IconSmall); got != "wi-rain-sm" {
		t.Errorf("expected small variant, got %s", got)
	}
}

func TestGreeting(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := map[int]string{
		6:  "Good morning",
		11: "Good morning",
		12: "Good afternoon",
		17: "Good afternoon",
		18: "Good evening",
		23: "Good evening",
	}
	for h, want := range cases {
		if got := Greeting(day.Add(time.Duration(h) * time.Hour)); got != want {
			t.Errorf("hour %d: expected %q, got %q", h, want, got)
		}
	}
}

func londonView(celsius, details bool) widget.View {
	return widget.View{
		Celsius:     celsius,
		ShowDetails: details,
		History:     []string{"London"},
		Report: &weather.Report{
			Current: weather.CurrentConditions{
				City:        "London",
				Country:     "GB",
				Temperature: 20,
				FeelsLike:   22,
				Humidity:    65,
				Pressure:    1013,
				Visibility:  10000,
				WindSpeed:   5,
				Sunrise:     1640995200,
				Sunset:      1641027600,
				Description: "clear sky",
				Condition:   weather.ConditionClear,
			},
			Forecast: []weather.ForecastEntry{
				{Timestamp: time.Unix(1641006000, 0).UTC(), Temperature: 18, Condition: weather.ConditionClouds},
				{Timestamp: time.Unix(1641016800, 0).UTC(), Temperature: 16, Condition: weather.ConditionRain},
			},
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	d := Build(londonView(true, false), now, nil)

	if d.Current == nil {
		t.Fatalf("expected current display")
	}
	if d.Current.Temperature != "20°C" || d.Current.Icon != "wi-day-sunny-lg" {
		t.Fatalf("unexpected current %+v", d.Current)
	}
	if d.Current.Place != "London, GB" || d.Current.Humidity != "65%" || d.Current.Wind != "5 m/s" {
		t.Fatalf("unexpected current %+v", d.Current)
	}
	if d.UnitToggle != "Switch to °F" {
		t.Fatalf("unexpected toggle label %q", d.UnitToggle)
	}
	if len(d.Forecast) != 2 || d.Forecast[0].Time != "03:00" || d.Forecast[1].Icon != "wi-rain-sm" {
		t.Fatalf("unexpected forecast %+v", d.Forecast)
	}
	if d.Details != nil {
		t.Fatalf("details must be hidden")
	}
	if d.Placeholder != "Search for a city..." || d.Greeting != "Good morning" {
		t.Fatalf("unexpected chrome %+v", d)
	}

	f := Build(londonView(false, true), now, nil)
	if f.Current.Temperature != "68°F" || f.UnitToggle != "Switch to °C" {
		t.Fatalf("unexpected fahrenheit display %+v", f.Current)
	}
	if f.Details == nil || f.Details.Visibility != "10.0 km" || f.Details.Pressure != "1013 hPa" {
		t.Fatalf("unexpected details %+v", f.Details)
	}
	if f.Details.Sunrise != "00:00" || f.Details.Range != "61°F to 64°F" {
		t.Fatalf("unexpected details %+v", f.Details)
	}
}

func TestBuildEmpty(t *testing.T) {
	d := Build(widget.View{Celsius: true, Error: widget.MsgNotFound}, time.Now(), nil)
	if d.Current != nil || len(d.Forecast) != 0 {
		t.Fatalf("expected no weather without report")
	}
	if d.Error != widget.MsgNotFound {
		t.Fatalf("expected error to be carried, got %q", d.Error)
	}
}

func TestText(t *testing.T) {
	out := Text(londonView(true, true), time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), nil)
	for _, want := range []string{"Good evening", "London, GB", "20°C", "feels like 22°C", "Recent searches: London", "Sunrise:", "Forecast"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
