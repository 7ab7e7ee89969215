package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/widget"
)

// Placeholder is the search field placeholder.
const Placeholder = "Search for a city..."

// Display is a view with every value already converted and formatted.
type Display struct {
	Greeting         string            `json:"greeting"`
	Placeholder      string            `json:"placeholder"`
	Input            string            `json:"input"`
	Loading          bool              `json:"loading"`
	ControlsDisabled bool              `json:"controlsDisabled"`
	Error            string            `json:"error,omitempty"`
	UnitToggle       string            `json:"unitToggle"`
	Unit             string            `json:"unit"`
	Recent           []string          `json:"recent"`
	Current          *CurrentDisplay   `json:"current,omitempty"`
	Forecast         []ForecastDisplay `json:"forecast,omitempty"`
	Details          *DetailsDisplay   `json:"details,omitempty"`
}

type CurrentDisplay struct {
	Place       string `json:"place"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feelsLike"`
	Humidity    string `json:"humidity"`
	Wind        string `json:"wind"`
}

type ForecastDisplay struct {
	Time        string `json:"time"`
	Icon        string `json:"icon"`
	Temperature string `json:"temperature"`
}

type DetailsDisplay struct {
	Pressure   string `json:"pressure"`
	Visibility string `json:"visibility"`
	Sunrise    string `json:"sunrise"`
	Sunset     string `json:"sunset"`
	Range      string `json:"range,omitempty"`
	Outlook    string `json:"outlook,omitempty"`
}

// Build formats v. now drives the greeting; times are shown in loc
// (UTC when nil).
func Build(v widget.View, now time.Time, loc *time.Location) Display {
	if loc == nil {
		loc = time.UTC
	}

	d := Display{
		Greeting:         Greeting(now.In(loc)),
		Placeholder:      Placeholder,
		Input:            v.Input,
		Loading:          v.Loading,
		ControlsDisabled: v.ControlsDisabled,
		Error:            v.Error,
		UnitToggle:       "Switch to " + UnitSymbol(!v.Celsius),
		Unit:             UnitSymbol(v.Celsius),
		Recent:           append([]string{}, v.History...),
	}

	if v.Report == nil {
		return d
	}

	cur := v.Report.Current
	place := cur.City
	if cur.Country != "" {
		place = fmt.Sprintf("%s, %s", cur.City, cur.Country)
	}
	d.Current = &CurrentDisplay{
		Place:       place,
		Description: cur.Description,
		Icon:        IconFor(cur.Condition, IconLarge),
		Temperature: FormatTemp(cur.Temperature, v.Celsius),
		FeelsLike:   FormatTemp(cur.FeelsLike, v.Celsius),
		Humidity:    fmt.Sprintf("%d%%", cur.Humidity),
		Wind:        fmt.Sprintf("%g m/s", cur.WindSpeed),
	}

	for _, f := range v.Report.Forecast {
		d.Forecast = append(d.Forecast, ForecastDisplay{
			Time:        f.Timestamp.In(loc).Format("15:04"),
			Icon:        IconFor(f.Condition, IconSmall),
			Temperature: FormatTemp(f.Temperature, v.Celsius),
		})
	}

	if v.ShowDetails {
		det := &DetailsDisplay{
			Pressure:   fmt.Sprintf("%g hPa", cur.Pressure),
			Visibility: fmt.Sprintf("%.1f km", float64(cur.Visibility)/1000),
			Sunrise:    formatEpoch(cur.Sunrise, loc),
			Sunset:     formatEpoch(cur.Sunset, loc),
		}
		if s, ok := weather.SummarizeForecast(v.Report.Forecast); ok {
			det.Range = FormatTemp(s.MinTemperature, v.Celsius) + " to " + FormatTemp(s.MaxTemperature, v.Celsius)
			det.Outlook = string(s.Condition)
		}
		d.Details = det
	}
	return d
}

func formatEpoch(sec int64, loc *time.Location) string {
	if sec == 0 {
		return "-"
	}
	return time.Unix(sec, 0).In(loc).Format("15:04")
}

// Text renders v as plain text for terminals.
func Text(v widget.View, now time.Time, loc *time.Location) string {
	d := Build(v, now, loc)
	var b strings.Builder

	fmt.Fprintf(&b, "%s! [%s] (%s)\n", d.Greeting, d.Unit, d.UnitToggle)
	if d.Loading {
		b.WriteString("Loading...\n")
	}
	if d.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", d.Error)
	}
	if len(d.Recent) > 0 {
		fmt.Fprintf(&b, "Recent searches: %s\n", strings.Join(d.Recent, " | "))
	}

	if v.Report == nil {
		return b.String()
	}

	cur := v.Report.Current
	fmt.Fprintf(&b, "\n%s  %s\n", d.Current.Place, Glyph(cur.Condition))
	if d.Current.Description != "" {
		fmt.Fprintf(&b, "%s\n", d.Current.Description)
	}
	fmt.Fprintf(&b, "Temperature: %s (feels like %s)\n", d.Current.Temperature, d.Current.FeelsLike)
	fmt.Fprintf(&b, "Humidity:    %s\n", d.Current.Humidity)
	fmt.Fprintf(&b, "Wind Speed:  %s\n", d.Current.Wind)

	if d.Details != nil {
		fmt.Fprintf(&b, "Pressure:    %s\n", d.Details.Pressure)
		fmt.Fprintf(&b, "Visibility:  %s\n", d.Details.Visibility)
		fmt.Fprintf(&b, "Sunrise:     %s  Sunset: %s\n", d.Details.Sunrise, d.Details.Sunset)
		if d.Details.Range != "" {
			fmt.Fprintf(&b, "Forecast:    %s, mostly %s\n", d.Details.Range, d.Details.Outlook)
		}
	}

	if len(d.Forecast) > 0 {
		b.WriteString("\nForecast\n")
		for i, f := range d.Forecast {
			fmt.Fprintf(&b, "  %s  %s  %s\n", f.Time, Glyph(v.Report.Forecast[i].Condition), f.Temperature)
		}
	}
	return b.String()
}
