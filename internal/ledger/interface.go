package ledger

import (
	"context"
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Ledger is the durable per-stream processing record store. It is the only
// shared mutable state in the system; every mutation is an atomic
// compare-and-swap on the record, so two concurrent claims on the same
// stream id cannot both succeed.
//
// Errors: domain.ErrConflict on a lost race or non-claimable record,
// domain.ErrUnavailable when the store itself fails (aborts the run).
type Ledger interface {
	// ExistingIDs returns the records that exist for the given stream ids.
	ExistingIDs(ctx context.Context, ids []string) (map[string]domain.ProcessingRecord, error)

	// Claimable reports whether a record may be claimed right now: not
	// completed, not terminally failed, and not actively held by a live
	// run. Used by discovery to filter candidates without claiming them.
	Claimable(rec domain.ProcessingRecord) bool

	// Claim atomically creates or takes over the record for a candidate on
	// behalf of runID, incrementing attempt_count. Fails with
	// domain.ErrConflict when the record is not claimable.
	Claim(ctx context.Context, cand domain.StreamCandidate, runID string) (domain.ProcessingRecord, error)

	// Transition moves the record's status from one stage to the next.
	// Fails with domain.ErrConflict if the record is not in the expected
	// from status (a concurrent writer won the race).
	Transition(ctx context.Context, id string, from, to domain.Status) error

	// MarkFailed records a failure at the given stage and releases the
	// claim. segment is the failing segment index, or -1.
	MarkFailed(ctx context.Context, id string, stage domain.Status, segment int, cause error) error

	// CompleteWithSummary transitions Summarizing to Completed and stores
	// the final summary in one atomic commit, so a crash can never leave a
	// summary without a completed record.
	CompleteWithSummary(ctx context.Context, id string, summary domain.FinalSummary) error

	// Record returns the record for a stream id, if present.
	Record(ctx context.Context, id string) (domain.ProcessingRecord, bool, error)

	// Summary returns the stored final summary for a stream id, if present.
	Summary(ctx context.Context, id string) (domain.FinalSummary, bool, error)

	Close() error
}

// Options control claim and retry semantics shared by all backends.
type Options struct {
	// MaxAttempts is the attempt budget per stream; a Failed record at the
	// budget is terminal.
	MaxAttempts int
	// ClaimLease is how long an active claim is honored. An active record
	// whose claim is older than the lease is treated as abandoned by a
	// crashed run and may be re-claimed.
	ClaimLease time.Duration
	// Now is the clock; defaults to time.Now. Overridable in tests.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now().UTC()
}
