package domain

import "time"

// Status is the processing state of a stream in the ledger.
// Transitions are monotonic forward; Failed may be re-claimed back to the
// stage that failed until the attempt budget is exhausted.
type Status string

const (
	StatusDiscovered   Status = "discovered"
	StatusDownloading  Status = "downloading"
	StatusTranscribing Status = "transcribing"
	StatusSummarizing  Status = "summarizing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// ProcessingRecord is the per-stream ledger entry. Exactly one record exists
// per stream ID; all mutations go through atomic ledger transitions.
type ProcessingRecord struct {
	StreamID   string    `json:"stream_id"`
	Title      string    `json:"title"`
	Chamber    Chamber   `json:"chamber"`
	RecordedAt time.Time `json:"recorded_at"`

	Status Status `json:"status"`
	// FailedStage is the stage that produced the failure when Status is
	// Failed. A re-claim resumes work from this stage's cached artifacts.
	FailedStage Status `json:"failed_stage,omitempty"`
	// FailedSegment is the segment index the failure refers to, or -1.
	FailedSegment int    `json:"failed_segment"`
	AttemptCount  int    `json:"attempt_count"`
	LastError     string `json:"last_error,omitempty"`

	// Claim lock: which run holds this record and since when. A claim older
	// than the ledger's lease is treated as abandoned by a crashed run.
	ClaimedBy string    `json:"claimed_by,omitempty"`
	ClaimedAt time.Time `json:"claimed_at,omitempty"`

	Version   uint64    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the record denotes in-flight processing.
func (r ProcessingRecord) Active() bool {
	switch r.Status {
	case StatusDiscovered, StatusDownloading, StatusTranscribing, StatusSummarizing:
		return true
	}
	return false
}

// Terminal reports whether no further processing may happen on this record:
// either completed, or failed with the attempt budget exhausted.
func (r ProcessingRecord) Terminal(maxAttempts int) bool {
	if r.Status == StatusCompleted {
		return true
	}
	return r.Status == StatusFailed && r.AttemptCount >= maxAttempts
}
