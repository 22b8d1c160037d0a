package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:     4,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     300 * time.Millisecond,
		Multiplier:      2,
		Strategy:        RetryStrategyExponential,
	}, zap.NewNop())
	var waits []time.Duration
	r.sleep = noSleep(&waits)

	attempts := 0
	err := r.Do(context.Background(), "connect", func(ctx context.Context) error {
		attempts++
		if attempts < 4 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, waits)
}

func TestRetry_GivesUp(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, Strategy: RetryStrategyLinear}, zap.NewNop())
	var waits []time.Duration
	r.sleep = noSleep(&waits)

	cause := errors.New("refused")
	err := r.Do(context.Background(), "connect", func(ctx context.Context) error { return cause })
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestRetry_StopsOnCancel(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 5, InitialInterval: time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := r.Do(ctx, "connect", func(ctx context.Context) error {
		attempts++
		cancel()
		return errors.New("fail")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	r := NewRetry(RetryConfig{}, zap.NewNop())
	attempts := 0
	err := r.Do(context.Background(), "op", func(ctx context.Context) error {
		attempts++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}
