package widget

import "github.com/i474232898/weather-widget/internal/weather"

// View is an immutable snapshot of the widget for rendering.
type View struct {
	Input   string `json:"input"`
	Loading bool   `json:"loading"`
	Phase   Phase  `json:"phase"`

	// Error is empty when there is nothing to show.
	Error     string    `json:"error"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`

	Celsius     bool `json:"celsius"`
	ShowDetails bool `json:"showDetails"`

	// ControlsDisabled is true while an operation is in flight; the search and
	// location controls are shown disabled.
	ControlsDisabled bool `json:"controlsDisabled"`

	// Report is the last successful fetch, nil before the first one. It stays
	// set when a later operation fails.
	Report *weather.Report `json:"report,omitempty"`

	History []string `json:"history"`
}
