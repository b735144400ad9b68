package scheduler

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Scheduler fires pipeline runs on a cron cadence with single-flight
// semantics: at most one run is ever active. A trigger that fires while a
// run is in progress is dropped, or queued to rerun once, per
// configuration.
type Scheduler interface {
	// Start blocks, firing runs on the configured schedule until ctx is
	// done, then waits for the active run to finish.
	Start(ctx context.Context) error

	// RunOnce executes a single run immediately, waiting for any active
	// run first.
	RunOnce(ctx context.Context) (domain.RunReport, error)
}
