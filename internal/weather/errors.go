package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind tags why a fetch failed.
type ErrorKind int

const (
	// KindNetwork covers transport failures, timeouts, malformed payloads and
	// any status without a dedicated kind.
	KindNetwork ErrorKind = iota
	KindNotFound
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "network"
	}
}

// FetchError is the failure half of a fetch result.
type FetchError struct {
	Kind   ErrorKind
	Status int // HTTP status when one was received, otherwise 0
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewStatusError classifies a non-2xx HTTP status.
func NewStatusError(status int, err error) *FetchError {
	kind := KindNetwork
	switch status {
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	}
	return &FetchError{Kind: kind, Status: status, Err: err}
}

// NewNetworkError wraps a failure that never produced a usable response.
func NewNetworkError(err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Err: err}
}

// KindOf returns the kind carried by err, defaulting to KindNetwork for
// errors that are not a *FetchError.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNetwork
}
