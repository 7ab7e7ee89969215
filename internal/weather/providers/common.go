package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/i474232898/weather-widget/internal/weather"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// maxErrorBody bounds how much of an error response is kept for logs.
const maxErrorBody = 512

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON executes a single GET through the circuit breaker and decodes a 2xx
// body into out. Failures come back as *weather.FetchError. Nothing is retried:
// the user re-triggers the operation instead.
func getJSON(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	spanName string,
	rawURL string,
	out any,
) error {
	if client == nil {
		return weather.NewNetworkError(errNoHTTPClient)
	}

	ctx, span := otel.Tracer("weather-widget").Start(ctx, spanName)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return weather.NewNetworkError(fmt.Errorf("failed to create request: %w", err))
	}

	// Only transport failures and 5xx count against the breaker. 404 and 429
	// are answers from a healthy API and are classified after Execute, so a
	// run of rate-limited searches keeps reporting "rate limited".
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 500 {
			body := readErrorBody(resp)
			return nil, weather.NewStatusError(resp.StatusCode, fmt.Errorf("%w: %s", errServerError, body))
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return weather.NewNetworkError(fmt.Errorf("%w: %v", errCircuitOpen, err))
		}
		var fe *weather.FetchError
		if errors.As(err, &fe) {
			return fe
		}
		return weather.NewNetworkError(fmt.Errorf("failed to execute request: %w", err))
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return weather.NewNetworkError(fmt.Errorf("unexpected result type from circuit breaker"))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		body := readErrorBody(resp)
		span.SetStatus(codes.Error, resp.Status)
		return weather.NewStatusError(resp.StatusCode, fmt.Errorf("%w: %s", errRateLimited, body))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readErrorBody(resp)
		span.SetStatus(codes.Error, resp.Status)
		return weather.NewStatusError(resp.StatusCode, fmt.Errorf("%w: %d: %s", errUnexpected, resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return weather.NewNetworkError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func readErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return string(b)
}
