package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	wantErr := errors.New("provider down")
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return wantErr
	}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	assert.Equal(t, wantErr, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ZeroRetryPolicy(t *testing.T) {
	// MaxAttempts 1 means exactly one attempt, no sleeping.
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("nope")
	}, RetryPolicy{MaxAttempts: 1, BaseDelay: time.Hour})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_InvalidPolicy(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil },
		RetryPolicy{MaxAttempts: 0})
	assert.Equal(t, ErrInvalidMaxAttempts, err)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		t.Fatal("operation should not run after cancellation")
		return nil
	}, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	assert.Equal(t, context.Canceled, err)
}

func TestRetryWithBackoff_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("transient")
	}, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute})

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, calls)
}
