package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrNoImageProduced = errors.New("no image produced")
	ErrProviderFailure = errors.New("provider failure")
)

// Kind tags an error with the category the HTTP boundary translates into a
// status code and a user-facing message.
type Kind string

const (
	KindBadRequest      Kind = "bad_request"
	KindRateLimited     Kind = "rate_limited"
	KindPaymentRequired Kind = "payment_required"
	KindProvider        Kind = "provider_error"
	KindNoImage         Kind = "no_image"
	KindNotFound        Kind = "not_found"
	KindUnhandled       Kind = "internal"
)

// ProviderError reports a non-success response from a generation provider.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("provider status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("%s status %d: %s", e.Provider, e.Status, e.Body)
}

func (e *ProviderError) Unwrap() error { return ErrProviderFailure }

func (e *ProviderError) RateLimited() bool { return e.Status == http.StatusTooManyRequests }

func (e *ProviderError) PaymentRequired() bool { return e.Status == http.StatusPaymentRequired }

// BadRequest wraps a validation message so it classifies as KindBadRequest.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, msg)
}

// KindOf classifies err. Unknown errors are KindUnhandled.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		switch {
		case perr.RateLimited():
			return KindRateLimited
		case perr.PaymentRequired():
			return KindPaymentRequired
		default:
			return KindProvider
		}
	}
	switch {
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrNoImageProduced):
		return KindNoImage
	case errors.Is(err, ErrProviderFailure):
		return KindProvider
	}
	return KindUnhandled
}

// IsFatal reports whether err must abort a whole variation job instead of
// skipping a single axis value. Only quota errors qualify; a per-call
// timeout is an ordinary axis failure.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindPaymentRequired:
		return true
	}
	return false
}
