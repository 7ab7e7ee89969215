package weather

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var errNoProvider = errors.New("no weather provider configured")

// Service runs one fetch operation: the current and forecast calls for a
// location, issued concurrently and joined.
type Service struct {
	provider Provider
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewService creates a new Service. A nil logger disables logging.
func NewService(provider Provider, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		provider: provider,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Fetch issues both provider calls concurrently and waits for both. If either
// fails the whole operation fails with that call's *FetchError; there is no
// partial result. At most MaxForecastEntries forecast entries are kept.
func (s *Service) Fetch(ctx context.Context, loc Location) (Report, error) {
	if s.provider == nil {
		return Report{}, NewNetworkError(errNoProvider)
	}

	ctx, span := otel.Tracer("weather-widget").Start(ctx, "weather.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("weather.provider", s.provider.Name()),
		attribute.String("weather.location", loc.Key()),
	)

	var (
		wg          sync.WaitGroup
		current     CurrentConditions
		forecast    []ForecastEntry
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		current, currentErr = s.provider.Current(ctx, loc)
	}()
	go func() {
		defer wg.Done()
		forecast, forecastErr = s.provider.Forecast(ctx, loc)
	}()
	wg.Wait()

	if err := errors.Join(currentErr, forecastErr); err != nil {
		// The current-conditions failure wins when both calls fail.
		failed := currentErr
		if failed == nil {
			failed = forecastErr
		}
		var fe *FetchError
		if !errors.As(failed, &fe) {
			fe = NewNetworkError(failed)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, fe.Kind.String())
		s.logger.Warnw("weather fetch failed",
			"provider", s.provider.Name(),
			"location", loc.Key(),
			"kind", fe.Kind.String(),
			"error", err,
		)
		return Report{}, fe
	}

	if len(forecast) > MaxForecastEntries {
		forecast = forecast[:MaxForecastEntries]
	}

	s.logger.Debugw("weather fetch succeeded",
		"provider", s.provider.Name(),
		"location", loc.Key(),
		"forecastEntries", len(forecast),
	)

	return Report{
		Location:  loc,
		Current:   current,
		Forecast:  forecast,
		FetchedAt: s.now(),
	}, nil
}
