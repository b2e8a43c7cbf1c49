// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// Policy configures Do. The wait after failed attempt k is
// BaseDelay * 2^(k-1), without jitter.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Notify is called before each wait with the number of the attempt
	// that just failed.
	Notify func(attempt int, err error, delay time.Duration)
	// Timer replaces the wall-clock timer; tests use it to skip waits.
	Timer backoff.Timer
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	return p
}

// Backoff builds the schedule for p bound to ctx.
func (p Policy) Backoff(ctx context.Context) backoff.BackOffContext {
	p = p.withDefaults()
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// Do runs op until it succeeds, returns a Permanent error, the attempts are
// used up, or ctx is done. On exhaustion the error of the last attempt is
// returned.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	attempt := 0
	operation := func() (T, error) {
		attempt++
		return op(ctx)
	}
	var notify backoff.Notify
	if p.Notify != nil {
		notify = func(err error, delay time.Duration) {
			p.Notify(attempt, err, delay)
		}
	}
	return backoff.RetryNotifyWithTimerAndData(operation, p.Backoff(ctx), notify, p.Timer)
}

// Permanent marks err as not worth retrying. Do returns the wrapped error
// unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}
