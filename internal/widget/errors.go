package widget

import (
	"errors"

	"github.com/i474232898/weather-widget/internal/weather"
)

// ErrNoSuchEntry is returned by SelectRecent for an index outside the
// search history.
var ErrNoSuchEntry = errors.New("no such recent search")

// ErrorKind classifies the error currently shown by the widget.
type ErrorKind string

const (
	ErrorNone              ErrorKind = ""
	ErrorNotFound          ErrorKind = "not_found"
	ErrorRateLimited       ErrorKind = "rate_limited"
	ErrorNetwork           ErrorKind = "network"
	ErrorGeolocationDenied ErrorKind = "geolocation_denied"
	ErrorGeolocationFetch  ErrorKind = "geolocation_fetch"
)

// User-facing messages, one per kind.
const (
	MsgNotFound          = "City not found. Please try again."
	MsgRateLimited       = "Too many requests. Please wait a moment and try again."
	MsgNetwork           = "Unable to fetch weather data. Please check your connection and try again."
	MsgGeolocationDenied = "Unable to get your location. Please enable location services."
	MsgGeolocationFetch  = "Error fetching weather data for your location."
)

// Message returns the text shown for k.
func (k ErrorKind) Message() string {
	switch k {
	case ErrorNotFound:
		return MsgNotFound
	case ErrorRateLimited:
		return MsgRateLimited
	case ErrorNetwork:
		return MsgNetwork
	case ErrorGeolocationDenied:
		return MsgGeolocationDenied
	case ErrorGeolocationFetch:
		return MsgGeolocationFetch
	default:
		return ""
	}
}

// classifyFetch maps a failed fetch to a widget error kind. Failures of a
// coordinate lookup all collapse into ErrorGeolocationFetch.
func classifyFetch(err error, byCoords bool) ErrorKind {
	if byCoords {
		return ErrorGeolocationFetch
	}
	switch weather.KindOf(err) {
	case weather.KindNotFound:
		return ErrorNotFound
	case weather.KindRateLimited:
		return ErrorRateLimited
	default:
		return ErrorNetwork
	}
}
