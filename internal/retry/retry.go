package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Policy is an explicit, passed-in retry configuration so backoff behavior
// is testable in isolation rather than baked into control flow.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64
}

// Do runs op, retrying transient failures with exponential backoff until it
// succeeds, a permanent error occurs, the attempt budget is spent, or ctx is
// done. Transience is decided by domain.IsTransient.
func (p Policy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.MaxInterval = p.MaxDelay
	bo.RandomizationFactor = p.Jitter
	bo.MaxElapsedTime = 0 // bounded by attempt count, not wall clock

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	wrapped := backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if domain.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}, wrapped)
}
