package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/weather-widget/internal/config"
	"github.com/i474232898/weather-widget/internal/history"
	"github.com/i474232898/weather-widget/internal/store"
	"github.com/i474232898/weather-widget/internal/weather"
	"github.com/i474232898/weather-widget/internal/weather/providers"
	"github.com/i474232898/weather-widget/internal/widget"
)

func newOneShotWidget(t *testing.T, status int) *widget.Widget {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch r.URL.Path {
		case "/weather":
			_, _ = w.Write([]byte(`{"name":"Oslo","main":{"temp":3},"weather":[{"main":"Snow"}],"sys":{"country":"NO"}}`))
		default:
			_, _ = w.Write([]byte(`{"list":[]}`))
		}
	}))
	t.Cleanup(srv.Close)

	provider := providers.NewOpenWeatherProvider(srv.Client(), "test-key", srv.URL)
	return widget.New(weather.NewService(provider, nil), nil, history.New(store.NewMemoryStore(), nil))
}

func TestRunOnceReturnsExitCode(t *testing.T) {
	cfg := &config.AppConfig{FetchTimeout: 5 * time.Second, TimeZone: time.UTC}

	if code := runOnce(newOneShotWidget(t, http.StatusOK), cfg, "Oslo", false, false); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if code := runOnce(newOneShotWidget(t, http.StatusNotFound), cfg, "Nowhere", false, false); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestSetTracingDisabled(t *testing.T) {
	shutdown, err := setTracing("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	shutdown()
}
