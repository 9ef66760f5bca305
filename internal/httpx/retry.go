package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const defaultBackoff = 200 * time.Millisecond

// withRetry runs fn until it succeeds, returns a non-retryable error, or
// maxRetries extra attempts are spent. The delay doubles after each attempt.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultBackoff
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || !retryable(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
	}
}

// retryable reports transport failures, 429 and 5xx responses.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status == http.StatusTooManyRequests || se.Status >= 500
	}
	var de *decodeError
	return !errors.As(err, &de)
}

type decodeError struct {
	url string
	err error
}

func (e *decodeError) Error() string { return "decode " + e.url + ": " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
