package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

func TestDelayFormula(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2.0}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, 10 * time.Second}, // capped
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Delay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestDelayJitterRange(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 10 * time.Second, Multiplier: 2.0, Jitter: true}
	for i := 0; i < 100; i++ {
		d := p.Delay(3) // 4s before jitter
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 4*time.Second+time.Millisecond)
	}
}

func TestStrategyFor(t *testing.T) {
	assert.Equal(t, FixedDelay, StrategyFor(chaterr.CategoryWindow))
	assert.Equal(t, Backoff, StrategyFor(chaterr.CategoryAutomation))
	assert.Equal(t, Backoff, StrategyFor(chaterr.CategoryTimeout))
	assert.Equal(t, FailFast, StrategyFor(chaterr.CategoryValidation))
	assert.Equal(t, FailFast, StrategyFor(chaterr.CategoryConfiguration))
	assert.Equal(t, Escalate, StrategyFor(chaterr.CategorySystem))
}

func TestDoStopsOnNonRecoverable(t *testing.T) {
	r := Runner{Policy: Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2.0}}
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return chaterr.Validation("message", "empty")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "validation errors must not be retried")
	assert.Equal(t, chaterr.CategoryValidation, chaterr.CategoryOf(err))
}

func TestDoStopsOnUncategorized(t *testing.T) {
	r := Runner{Policy: Policy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2.0}}
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return errors.New("anonymous")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesRecoverableUntilBudget(t *testing.T) {
	r := Runner{Policy: Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2.0}}
	calls := 0
	last := chaterr.Automation("send_message", errors.New("ui contention"))
	err := r.Do(context.Background(), "send_message", func(context.Context) error {
		calls++
		return last
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Same(t, last, chaterr.As(err), "exhausting retries re-raises the last categorized error")
}

func TestDoSucceedsAfterTransientFailure(t *testing.T) {
	r := Runner{Policy: Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2.0}}
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 2 {
			return chaterr.WindowNotFound("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	r := Runner{Policy: Policy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2.0}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := r.Do(ctx, "op", func(context.Context) error {
		return chaterr.WindowNotFound("never appears")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
