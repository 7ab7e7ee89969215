// Package widget implements the weather widget's state machine: the user
// actions, the fetch/error/loading lifecycle of each operation, and the
// snapshot the view is rendered from.
package widget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/i474232898/weather-widget/internal/geolocation"
	"github.com/i474232898/weather-widget/internal/history"
	"github.com/i474232898/weather-widget/internal/weather"
)

// Fetcher runs one weather operation for a location.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location) (weather.Report, error)
}

// Phase is the state of the most recent operation.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// Option configures a Widget.
type Option func(*Widget)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDiscardStale controls what happens when an operation resolves after a
// newer one was started. When true (the default) its result is dropped; when
// false every result is applied as it arrives and the last one to resolve wins.
func WithDiscardStale(discard bool) Option {
	return func(w *Widget) {
		w.discardStale = discard
	}
}

// Widget holds UI state and the last successful report. It is safe for
// concurrent use; network and geolocation calls run outside the lock.
type Widget struct {
	fetcher      Fetcher
	locator      geolocation.Locator
	history      *history.History
	logger       *zap.SugaredLogger
	discardStale bool
	now          func() time.Time

	mu          sync.Mutex
	generation  uint64
	input       string
	loading     bool
	phase       Phase
	errKind     ErrorKind
	celsius     bool
	showDetails bool
	report      *weather.Report
}

// New creates a widget and loads the persisted search history once.
func New(fetcher Fetcher, locator geolocation.Locator, hist *history.History, opts ...Option) *Widget {
	w := &Widget{
		fetcher:      fetcher,
		locator:      locator,
		history:      hist,
		logger:       zap.NewNop().Sugar(),
		discardStale: true,
		now:          time.Now,
		phase:        PhaseIdle,
		celsius:      true,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.locator == nil {
		w.locator = geolocation.NewStaticLocator(nil)
	}

	w.history.Load()
	return w
}

// SetInput replaces the search field text.
func (w *Widget) SetInput(text string) View {
	w.mu.Lock()
	w.input = text
	v := w.viewLocked()
	w.mu.Unlock()
	return v
}

// Submit searches for the current input. Blank input is ignored; otherwise
// the field is cleared and a search starts for the trimmed text.
func (w *Widget) Submit(ctx context.Context) View {
	w.mu.Lock()
	city := strings.TrimSpace(w.input)
	if city == "" {
		v := w.viewLocked()
		w.mu.Unlock()
		return v
	}
	w.input = ""
	w.mu.Unlock()

	return w.Search(ctx, city)
}

// Search runs one operation for a city. On success the city is recorded in
// the search history.
func (w *Widget) Search(ctx context.Context, city string) View {
	city = strings.TrimSpace(city)
	if city == "" {
		return w.View()
	}

	gen := w.begin()
	report, err := w.fetch(ctx, gen, weather.CityLocation(city))
	if err != nil {
		v, _ := w.fail(gen, classifyFetch(err, false))
		return v
	}
	v, _ := w.succeed(gen, report, city)
	return v
}

// SelectRecent re-runs the search for history entry i.
func (w *Widget) SelectRecent(ctx context.Context, i int) (View, error) {
	city, ok := w.history.At(i)
	if !ok {
		return w.View(), ErrNoSuchEntry
	}
	return w.Search(ctx, city), nil
}

// UseLocation asks the locator for the device position and runs one
// operation for it. Coordinate lookups are not recorded in history.
func (w *Widget) UseLocation(ctx context.Context) View {
	gen := w.begin()

	coords, err := w.locator.Locate(ctx)
	if err != nil {
		w.logger.Infow("geolocation failed", "error", err)
		v, _ := w.fail(gen, ErrorGeolocationDenied)
		return v
	}

	report, err := w.fetch(ctx, gen, weather.CoordsLocation(coords))
	if err != nil {
		v, _ := w.fail(gen, classifyFetch(err, true))
		return v
	}
	v, _ := w.succeed(gen, report, "")
	return v
}

// Refresh re-fetches the location of the current report. It does nothing
// before the first successful fetch or while an operation is in flight.
func (w *Widget) Refresh(ctx context.Context) View {
	w.mu.Lock()
	if w.report == nil || w.loading {
		v := w.viewLocked()
		w.mu.Unlock()
		return v
	}
	loc := w.report.Location
	gen := w.beginLocked()
	w.mu.Unlock()

	report, err := w.fetch(ctx, gen, loc)
	if err != nil {
		v, _ := w.fail(gen, classifyFetch(err, loc.IsCoords()))
		return v
	}
	v, _ := w.succeed(gen, report, "")
	return v
}

// ToggleUnits switches between Celsius and Fahrenheit.
func (w *Widget) ToggleUnits() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.celsius = !w.celsius
	return w.viewLocked()
}

// ToggleDetails shows or hides the details panel.
func (w *Widget) ToggleDetails() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.showDetails = !w.showDetails
	return w.viewLocked()
}

// View returns a snapshot of the current state.
func (w *Widget) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

// begin moves the widget into Loading and returns the new operation's
// generation. The previous error is cleared; the previous report stays.
func (w *Widget) begin() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.beginLocked()
}

// beginLocked is begin for callers that already hold mu.
func (w *Widget) beginLocked() uint64 {
	w.generation++
	w.loading = true
	w.phase = PhaseLoading
	w.errKind = ErrorNone
	return w.generation
}

func (w *Widget) fetch(ctx context.Context, gen uint64, loc weather.Location) (weather.Report, error) {
	opID := uuid.NewString()
	ctx, span := otel.Tracer("weather-widget").Start(ctx, "widget.operation")
	defer span.End()
	span.SetAttributes(
		attribute.String("widget.operation_id", opID),
		attribute.Int64("widget.generation", int64(gen)),
		attribute.String("weather.location", loc.Key()),
	)

	started := w.now()
	report, err := w.fetcher.Fetch(ctx, loc)
	w.logger.Infow("weather operation finished",
		"operation", opID,
		"generation", gen,
		"location", loc.Key(),
		"duration", w.now().Sub(started),
		"ok", err == nil,
	)
	return report, err
}

// stale reports whether gen's result must be dropped. Callers hold mu.
func (w *Widget) stale(gen uint64) bool {
	return w.discardStale && gen != w.generation
}

// succeed applies report. A non-empty city is recorded in the history in the
// same critical section, so the front of the history always matches the
// report on screen.
func (w *Widget) succeed(gen uint64, report weather.Report, city string) (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stale(gen) {
		w.logger.Debugw("discarding stale result", "generation", gen, "latest", w.generation)
		return w.viewLocked(), false
	}
	w.report = &report
	w.errKind = ErrorNone
	w.loading = false
	w.phase = PhaseSuccess

	if city != "" {
		if err := w.history.Record(city); err != nil {
			w.logger.Warnw("search history not persisted", "city", city, "error", err)
		}
	}
	return w.viewLocked(), true
}

func (w *Widget) fail(gen uint64, kind ErrorKind) (View, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stale(gen) {
		w.logger.Debugw("discarding stale failure", "generation", gen, "latest", w.generation, "kind", kind)
		return w.viewLocked(), false
	}
	w.errKind = kind
	w.loading = false
	w.phase = PhaseFailure
	return w.viewLocked(), true
}

func (w *Widget) viewLocked() View {
	v := View{
		Input:            w.input,
		Loading:          w.loading,
		Phase:            w.phase,
		ErrorKind:        w.errKind,
		Error:            w.errKind.Message(),
		Celsius:          w.celsius,
		ShowDetails:      w.showDetails,
		ControlsDisabled: w.loading,
		History:          w.history.Entries(),
	}
	if w.report != nil {
		r := *w.report
		r.Forecast = append([]weather.ForecastEntry(nil), w.report.Forecast...)
		v.Report = &r
	}
	return v
}
