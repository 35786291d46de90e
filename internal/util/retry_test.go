package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_SucceedsAfterTransientFailures(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Retryable: IsTransient}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_StopsAfterMaxRetries(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Retryable: IsTransient}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	// One initial attempt plus two retries.
	assert.Equal(t, 3, attempts)
}

func TestRetryPolicy_DoesNotRetryPermanentErrors(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 2, Delay: time.Millisecond, Retryable: IsTransient}

	attempts := 0
	err := policy.Do(context.Background(), func() error {
		attempts++
		return &HTTPStatusError{StatusCode: 400, Body: "bad request"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryPolicy_HonorsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxRetries: 5, Delay: time.Minute, Retryable: IsTransient}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"dns", errors.New("no such host"), true},
		{"korean network failure", errors.New("서버 연결에 실패했습니다"), true},
		{"server error", &HTTPStatusError{StatusCode: 503, Body: "unavailable"}, true},
		{"client error", &HTTPStatusError{StatusCode: 422, Body: "invalid"}, false},
		{"validation", errors.New("invalid meal_time"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}
