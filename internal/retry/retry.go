// Package retry implements the explicit retry policy used by callers of the
// automation coordinator. Strategies are chosen per error category; the
// policy object replaces implicit decorator-style wrapping so the control
// flow stays visible at the call site.
package retry

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/kyungsuk-kim/windows-chatgpt-mcp/internal/chaterr"
)

// Strategy selects how a failed attempt is followed up.
type Strategy int

const (
	// FailFast surfaces the error immediately.
	FailFast Strategy = iota
	// Immediate retries with no delay.
	Immediate
	// FixedDelay retries after BaseDelay.
	FixedDelay
	// Backoff retries after an exponentially growing, optionally jittered delay.
	Backoff
	// Escalate surfaces the error for operator attention.
	Escalate
)

// StrategyFor returns the default strategy for an error category.
func StrategyFor(cat chaterr.Category) Strategy {
	switch cat {
	case chaterr.CategoryWindow:
		return FixedDelay
	case chaterr.CategoryAutomation, chaterr.CategoryTimeout:
		return Backoff
	case chaterr.CategoryValidation, chaterr.CategoryConfiguration:
		return FailFast
	default:
		return Escalate
	}
}

// Policy holds the retry tunables.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      bool
}

// DefaultPolicy mirrors the server defaults: two attempts, 1s base,
// capped at 30s, doubling, with jitter.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// Delay computes the backoff delay for a 1-based attempt number:
// min(base * multiplier^(attempt-1), max), scaled by a uniform factor in
// [0.5, 1.0) when jitter is enabled.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if max := float64(p.MaxDelay); d > max {
		d = max
	}
	if p.Jitter {
		d *= 0.5 + rand.Float64()*0.5
	}
	return time.Duration(d)
}

// Context tracks one logical operation across its attempts. It is created
// when the operation starts and discarded after final success or failure.
type Context struct {
	Operation    string
	Attempt      int
	Failures     []error
	FirstAttempt time.Time
}

// Runner executes functions under a policy, consulting the error category
// of each failure to decide whether and how to retry.
type Runner struct {
	Policy Policy
	Log    *slog.Logger
}

// Do runs fn until it succeeds, a non-recoverable error occurs, the attempt
// budget is exhausted, or ctx is done. The last categorized error is
// returned, never swallowed.
func (r Runner) Do(ctx context.Context, operation string, fn func(context.Context) error) error {
	rc := Context{Operation: operation, FirstAttempt: time.Now()}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	for {
		rc.Attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		rc.Failures = append(rc.Failures, err)

		strategy := FailFast
		if ce := chaterr.As(err); ce != nil {
			if !ce.Recoverable {
				return err
			}
			strategy = StrategyFor(ce.Category)
		}
		if strategy == FailFast || strategy == Escalate {
			return err
		}
		if rc.Attempt >= r.Policy.MaxAttempts {
			log.Warn("retry budget exhausted",
				"operation", operation,
				"attempts", rc.Attempt,
				"elapsed", time.Since(rc.FirstAttempt),
				"error", err)
			return err
		}

		var delay time.Duration
		switch strategy {
		case FixedDelay:
			delay = r.Policy.BaseDelay
		case Backoff:
			delay = r.Policy.Delay(rc.Attempt)
		}
		log.Info("retrying operation",
			"operation", operation,
			"attempt", rc.Attempt,
			"delay", delay,
			"category", chaterr.CategoryOf(err))

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
