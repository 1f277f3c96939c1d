package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetrier(maxAttempts int) *Retrier {
	return New(
		WithMaxAttempts(maxAttempts),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(2*time.Millisecond),
		WithJitter(0),
	)
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := fastRetrier(3).Do(context.Background(), func(_ context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	cause := errors.New("connection reset")
	calls := 0

	err := fastRetrier(5).Do(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(cause)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	cause := errors.New("still down")
	calls := 0

	err := fastRetrier(3).Do(context.Background(), func(_ context.Context) error {
		calls++
		return Retryable(cause)
	})

	// The wrapper is stripped once attempts run out.
	assert.Equal(t, cause, err)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	cause := errors.New("constraint violation")
	calls := 0

	err := fastRetrier(5).Do(context.Background(), func(_ context.Context) error {
		calls++
		return Permanent(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestDoDoesNotRetryPlainErrors(t *testing.T) {
	cause := errors.New("unmarked failure")
	calls := 0

	err := fastRetrier(5).Do(context.Background(), func(_ context.Context) error {
		calls++
		return cause
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestDoRespectsRetryIf(t *testing.T) {
	cause := errors.New("timeout")
	calls := 0

	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithRetryIf(func(err error) bool { return err.Error() == "timeout" }),
	)

	err := r.Do(context.Background(), func(_ context.Context) error {
		calls++
		return cause
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastRetrier(3).Do(ctx, func(_ context.Context) error {
		calls++
		return Retryable(errors.New("never seen"))
	})

	assert.Error(t, err)
	assert.Equal(t, 0, calls)
}

func TestOnRetryCallback(t *testing.T) {
	var attempts []int

	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
		WithOnRetry(func(attempt int, _ error, _ time.Duration) {
			attempts = append(attempts, attempt)
		}),
	)

	_ = r.Do(context.Background(), func(_ context.Context) error {
		return Retryable(errors.New("flaky"))
	})

	// Called before each retry, not before the first attempt.
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestCalculateDelayBacksOffAndCaps(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(300*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(3))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(10))
}

func TestErrorWrappers(t *testing.T) {
	cause := errors.New("root")

	assert.True(t, IsRetryable(Retryable(cause)))
	assert.False(t, IsRetryable(cause))
	assert.True(t, IsPermanent(Permanent(cause)))
	assert.False(t, IsPermanent(cause))

	assert.ErrorIs(t, Retryable(cause), cause)
	assert.ErrorIs(t, Permanent(cause), cause)

	assert.Nil(t, Retryable(nil))
	assert.Nil(t, Permanent(nil))
}

func TestDoWithData(t *testing.T) {
	calls := 0
	value, err := DoWithData(context.Background(), func(_ context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", Retryable(errors.New("flaky"))
		}
		return "ready", nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond), WithJitter(0))

	assert.NoError(t, err)
	assert.Equal(t, "ready", value)
	assert.Equal(t, 2, calls)
}
