// Package geolocation answers "where am I" for the widget's use-my-location
// control and resolves city names to coordinates for coordinate-only APIs.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-widget/internal/common"
	"github.com/i474232898/weather-widget/internal/weather"
)

var (
	// ErrDenied means no position may be reported (nothing configured, or the
	// platform refused).
	ErrDenied = errors.New("location access denied")
	// ErrUnavailable means a position was allowed but could not be determined.
	ErrUnavailable = errors.New("location unavailable")
)

// Locator yields the device position. Errors wrap ErrDenied or ErrUnavailable.
type Locator interface {
	Locate(ctx context.Context) (weather.Coordinates, error)
}

// StaticLocator reports a fixed, configured position.
type StaticLocator struct {
	coords *weather.Coordinates
}

// NewStaticLocator returns a locator for c. A nil c behaves like a device
// with location services turned off.
func NewStaticLocator(c *weather.Coordinates) *StaticLocator {
	return &StaticLocator{coords: c}
}

func (l *StaticLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if l.coords == nil {
		return weather.Coordinates{}, ErrDenied
	}
	return *l.coords, nil
}

// geocode is the subset of the geocoder package used here; tests swap it.
type geocodeFunc func(geocoder.Address) (geocoder.Location, error)

// googleMu serializes access to the geocoder package's globals ApiKey and
// ApiUrl.
var googleMu sync.Mutex

var defaultGeocodeURL = geocoder.ApiUrl

// GoogleGeocoder resolves addresses and city names through the Google
// Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	apiURL  string
	geocode geocodeFunc
}

// NewGoogleGeocoder creates a geocoder using apiKey. An empty apiURL uses
// Google's endpoint; otherwise it is the geocode URL prefix the address query
// is appended to (for example "https://host/maps/api/geocode/json?").
func NewGoogleGeocoder(apiKey, apiURL string) *GoogleGeocoder {
	if apiURL == "" {
		apiURL = defaultGeocodeURL
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		apiURL:  apiURL,
		geocode: geocoder.Geocoding,
	}
}

// Resolve looks up a city name. A lookup with no match is reported as a
// weather.KindNotFound fetch error so the widget shows "city not found".
func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	return g.lookup(ctx, geocoder.Address{City: city})
}

func (g *GoogleGeocoder) lookup(ctx context.Context, addr geocoder.Address) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, weather.NewNetworkError(errors.New("geocoder api key is not configured"))
	}
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, weather.NewNetworkError(err)
	}

	googleMu.Lock()
	geocoder.ApiKey = g.apiKey
	geocoder.ApiUrl = g.apiURL
	loc, err := g.geocode(addr)
	googleMu.Unlock()

	if err != nil {
		return weather.Coordinates{}, classifyGeocodeError(err)
	}
	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}

// classifyGeocodeError maps the geocoder package's status messages
// ("No results found." for ZERO_RESULTS, "You are over your quota." for
// OVER_QUERY_LIMIT) onto fetch error kinds.
func classifyGeocodeError(err error) *weather.FetchError {
	msg := strings.ToLower(err.Error())
	switch {
	case common.HasAny(msg, "no results found", "zero_results"):
		return &weather.FetchError{Kind: weather.KindNotFound, Err: fmt.Errorf("geocode: %w", err)}
	case common.HasAny(msg, "over your quota", "over_query_limit"):
		return &weather.FetchError{Kind: weather.KindRateLimited, Err: fmt.Errorf("geocode: %w", err)}
	default:
		return weather.NewNetworkError(fmt.Errorf("geocode: %w", err))
	}
}

// AddressLocator reports the position of a configured street address, for
// hosts without a positioning device.
type AddressLocator struct {
	geocoder *GoogleGeocoder
	address  string

	mu     sync.Mutex
	cached *weather.Coordinates
}

// NewAddressLocator creates a locator for a free-form address such as
// "10 Downing Street, London, GB". The comma-separated parts are read as
// street, city and country from the left.
func NewAddressLocator(g *GoogleGeocoder, address string) *AddressLocator {
	return &AddressLocator{geocoder: g, address: address}
}

func (l *AddressLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	if strings.TrimSpace(l.address) == "" {
		return weather.Coordinates{}, ErrDenied
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return *l.cached, nil
	}

	c, err := l.geocoder.lookup(ctx, parseAddress(l.address))
	if err != nil {
		return weather.Coordinates{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	l.cached = &c
	return c, nil
}

func parseAddress(s string) geocoder.Address {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var addr geocoder.Address
	switch len(parts) {
	case 1:
		addr.City = parts[0]
	case 2:
		addr.City, addr.Country = parts[0], parts[1]
	default:
		addr.Street = strings.Join(parts[:len(parts)-2], ", ")
		addr.City = parts[len(parts)-2]
		addr.Country = parts[len(parts)-1]
	}
	return addr
}
