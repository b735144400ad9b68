package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

func fastPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		Jitter:      0,
	}
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("call %d: %w", calls, domain.ErrRateLimited)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	err := fastPolicy(5).Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("bad file: %w", domain.ErrInvalidAudio)
	})
	if !errors.Is(err, domain.ErrInvalidAudio) {
		t.Fatalf("Do() error = %v, want ErrInvalidAudio", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (permanent errors are never retried)", calls)
	}
}

func TestDoBoundedAttempts(t *testing.T) {
	calls := 0
	err := fastPolicy(3).Do(context.Background(), func() error {
		calls++
		return domain.ErrNetwork
	})
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("Do() error = %v, want ErrNetwork", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Policy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}.Do(ctx, func() error {
		calls++
		return domain.ErrNetwork
	})
	if err == nil {
		t.Fatal("Do() should fail when context is cancelled")
	}
	if calls > 1 {
		t.Errorf("calls = %d, want at most 1 after cancellation", calls)
	}
}
