package weather

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProvider struct {
	current     CurrentConditions
	forecast    []ForecastEntry
	currentErr  error
	forecastErr error
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) enter() {
	n := f.inFlight.Add(1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(f.delay)
	f.inFlight.Add(-1)
}

func (f *fakeProvider) Current(ctx context.Context, loc Location) (CurrentConditions, error) {
	f.enter()
	return f.current, f.currentErr
}

func (f *fakeProvider) Forecast(ctx context.Context, loc Location) ([]ForecastEntry, error) {
	f.enter()
	return f.forecast, f.forecastErr
}

func entries(n int) []ForecastEntry {
	out := make([]ForecastEntry, n)
	base := time.Unix(1700000000, 0).UTC()
	for i := range out {
		out[i] = ForecastEntry{
			Timestamp:   base.Add(time.Duration(i) * 3 * time.Hour),
			Temperature: float64(10 + i),
			Condition:   ConditionClear,
		}
	}
	return out
}

func TestFetchTruncatesForecast(t *testing.T) {
	p := &fakeProvider{
		current:  CurrentConditions{City: "London", Temperature: 20, Condition: ConditionClear},
		forecast: entries(8),
	}
	svc := NewService(p, nil)

	report, err := svc.Fetch(context.Background(), CityLocation("London"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Current.City != "London" {
		t.Fatalf("expected city London, got %q", report.Current.City)
	}
	if len(report.Forecast) != MaxForecastEntries {
		t.Fatalf("expected %d forecast entries, got %d", MaxForecastEntries, len(report.Forecast))
	}
	if report.Location.City != "London" {
		t.Fatalf("expected report location London, got %q", report.Location.City)
	}
}

func TestFetchKeepsShortForecast(t *testing.T) {
	p := &fakeProvider{forecast: entries(3)}
	svc := NewService(p, nil)

	report, err := svc.Fetch(context.Background(), CityLocation("Oslo"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Forecast) != 3 {
		t.Fatalf("expected 3 forecast entries, got %d", len(report.Forecast))
	}
}

func TestFetchIssuesCallsConcurrently(t *testing.T) {
	p := &fakeProvider{delay: 50 * time.Millisecond}
	svc := NewService(p, nil)

	if _, err := svc.Fetch(context.Background(), CityLocation("Paris")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.maxInFlight.Load(); got != 2 {
		t.Fatalf("expected both calls in flight together, max in flight was %d", got)
	}
}

func TestFetchFailsWhenEitherCallFails(t *testing.T) {
	notFound := NewStatusError(http.StatusNotFound, errors.New("city not found"))

	cases := []struct {
		name string
		p    *fakeProvider
		want ErrorKind
	}{
		{"current fails", &fakeProvider{currentErr: notFound, forecast: entries(5)}, KindNotFound},
		{"forecast fails", &fakeProvider{forecastErr: NewStatusError(http.StatusTooManyRequests, errors.New("slow down"))}, KindRateLimited},
		{"plain error", &fakeProvider{currentErr: errors.New("dial tcp: refused")}, KindNetwork},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(tc.p, nil)
			report, err := svc.Fetch(context.Background(), CityLocation("Nowhere"))
			if err == nil {
				t.Fatalf("expected error, got report %+v", report)
			}
			if got := KindOf(err); got != tc.want {
				t.Fatalf("expected kind %v, got %v", tc.want, got)
			}
			if len(report.Forecast) != 0 || report.Current.City != "" {
				t.Fatalf("expected empty report on failure, got %+v", report)
			}
		})
	}
}

func TestFetchWithoutProvider(t *testing.T) {
	svc := NewService(nil, nil)
	if _, err := svc.Fetch(context.Background(), CityLocation("Rome")); KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestSummarizeForecast(t *testing.T) {
	in := []ForecastEntry{
		{Temperature: 10, Humidity: 50, WindSpeed: 2, Condition: ConditionRain},
		{Temperature: 14, Humidity: 70, WindSpeed: 4, Condition: ConditionClouds},
		{Temperature: 12, Humidity: 60, WindSpeed: 3, Condition: ConditionRain},
	}

	s, ok := SummarizeForecast(in)
	if !ok {
		t.Fatalf("expected summary")
	}
	if s.MinTemperature != 10 || s.MaxTemperature != 14 || s.AvgTemperature != 12 {
		t.Fatalf("unexpected temperatures: %+v", s)
	}
	if s.AvgHumidity != 60 || s.AvgWindSpeed != 3 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if s.Condition != ConditionRain {
		t.Fatalf("expected majority condition Rain, got %s", s.Condition)
	}

	if _, ok := SummarizeForecast(nil); ok {
		t.Fatalf("expected no summary for empty forecast")
	}
}

func TestSummarizeForecastTieUsesEarliest(t *testing.T) {
	in := []ForecastEntry{
		{Condition: ConditionSnow},
		{Condition: ConditionClear},
	}
	s, _ := SummarizeForecast(in)
	if s.Condition != ConditionSnow {
		t.Fatalf("expected Snow on tie, got %s", s.Condition)
	}
}
