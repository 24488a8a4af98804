package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy holds the retry schedule for one operation. Waits between attempts
// follow an exponential backoff bounded by MinWait and MaxWait. The final
// attempt's error is returned to the caller unchanged, so provider error
// identity survives exhaustion.
type Policy struct {
	MaxAttempts int           // total attempts including the first
	Multiplier  float64       // backoff growth factor
	MinWait     time.Duration // first wait
	MaxWait     time.Duration // wait ceiling
}

// DefaultPolicy mirrors the shipped configuration defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Multiplier:  2.0,
		MinWait:     time.Second,
		MaxWait:     10 * time.Second,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.MinWait <= 0 {
		p.MinWait = time.Second
	}
	if p.MaxWait < p.MinWait {
		p.MaxWait = p.MinWait
	}
	return p
}

// Notify is called before each backoff wait with the error that triggered it.
type Notify func(err error, wait time.Duration)

// Do runs op under the policy and returns its result, or the last error once
// attempts are exhausted. notify may be nil.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error), notify Notify) (T, error) {
	p = p.normalized()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.MinWait
	b.MaxInterval = p.MaxWait
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	var bo backoff.BackOff = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	bo = backoff.WithContext(bo, ctx)

	var n backoff.Notify
	if notify != nil {
		n = backoff.Notify(notify)
	}
	return backoff.RetryNotifyWithData(func() (T, error) {
		return op(ctx)
	}, bo, n)
}
