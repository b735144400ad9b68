package ledger

import (
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// The claim and transition rules live here so the badger and in-memory
// backends cannot drift apart.

func (o Options) claimable(rec domain.ProcessingRecord, now time.Time) bool {
	switch {
	case rec.Status == domain.StatusCompleted:
		return false
	case rec.Status == domain.StatusFailed:
		return rec.AttemptCount < o.MaxAttempts
	case rec.Active():
		// Held by a live run unless the lease has lapsed.
		return now.Sub(rec.ClaimedAt) >= o.ClaimLease
	}
	return false
}

func newRecord(cand domain.StreamCandidate, runID string, now time.Time) domain.ProcessingRecord {
	return domain.ProcessingRecord{
		StreamID:      cand.ID,
		Title:         cand.Title,
		Chamber:       cand.Chamber,
		RecordedAt:    cand.RecordedAt,
		Status:        domain.StatusDiscovered,
		FailedSegment: -1,
		AttemptCount:  1,
		ClaimedBy:     runID,
		ClaimedAt:     now,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// applyClaim takes over an existing claimable record for a new attempt.
// Prior failure details are kept so the pipeline can reuse cached artifacts
// from the stage that failed.
func applyClaim(rec *domain.ProcessingRecord, runID string, now time.Time) {
	rec.Status = domain.StatusDiscovered
	rec.AttemptCount++
	rec.ClaimedBy = runID
	rec.ClaimedAt = now
	rec.Version++
	rec.UpdatedAt = now
}

func applyTransition(rec *domain.ProcessingRecord, to domain.Status, now time.Time) {
	rec.Status = to
	rec.Version++
	rec.UpdatedAt = now
}

func applyFailure(rec *domain.ProcessingRecord, stage domain.Status, segment int, cause error, now time.Time) {
	rec.Status = domain.StatusFailed
	rec.FailedStage = stage
	rec.FailedSegment = segment
	if cause != nil {
		rec.LastError = cause.Error()
	}
	rec.ClaimedBy = ""
	rec.ClaimedAt = time.Time{}
	rec.Version++
	rec.UpdatedAt = now
}

func applyCompletion(rec *domain.ProcessingRecord, now time.Time) {
	rec.Status = domain.StatusCompleted
	rec.FailedStage = ""
	rec.FailedSegment = -1
	rec.LastError = ""
	rec.ClaimedBy = ""
	rec.ClaimedAt = time.Time{}
	rec.Version++
	rec.UpdatedAt = now
}
