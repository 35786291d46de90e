package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// HTTPStatusError carries a non-2xx backend status through the error chain so
// the retry predicate can distinguish server faults from rejections.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
}

// RetryPolicy retries an operation a fixed number of times with a fixed delay
// between attempts. Retryable decides per error whether another attempt is
// worth making; a nil Retryable retries everything.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
	Retryable  func(error) bool
}

// Do runs op, retrying failures according to the policy. The error from the
// last attempt is returned when all attempts fail.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay):
			}
		}
		if err = op(); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}

// IsTransient reports whether an error matches one of the recognized
// transient failure signatures. Validation-style rejections (4xx) are not
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	msg := err.Error()
	for _, signature := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"network",
		"서버 연결에 실패",
	} {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}
