package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// memoryLedger implements Ledger without durability. Used by tests and
// dry runs; it obeys the same claim/transition rules as the badger backend.
type memoryLedger struct {
	mu        sync.Mutex
	records   map[string]domain.ProcessingRecord
	summaries map[string]domain.FinalSummary
	opts      Options
}

// NewMemory creates an in-process, non-durable ledger.
func NewMemory(opts Options) Ledger {
	return &memoryLedger{
		records:   make(map[string]domain.ProcessingRecord),
		summaries: make(map[string]domain.FinalSummary),
		opts:      opts,
	}
}

func (l *memoryLedger) Claimable(rec domain.ProcessingRecord) bool {
	return l.opts.claimable(rec, l.opts.now())
}

func (l *memoryLedger) ExistingIDs(ctx context.Context, ids []string) (map[string]domain.ProcessingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]domain.ProcessingRecord, len(ids))
	for _, id := range ids {
		if rec, ok := l.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func (l *memoryLedger) Claim(ctx context.Context, cand domain.StreamCandidate, runID string) (domain.ProcessingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.opts.now()
	rec, ok := l.records[cand.ID]
	if !ok {
		rec = newRecord(cand, runID, now)
		l.records[cand.ID] = rec
		return rec, nil
	}

	if !l.opts.claimable(rec, now) {
		return domain.ProcessingRecord{}, fmt.Errorf("claim %s: %w", cand.ID, domain.ErrConflict)
	}
	applyClaim(&rec, runID, now)
	l.records[cand.ID] = rec
	return rec, nil
}

func (l *memoryLedger) Transition(ctx context.Context, id string, from, to domain.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("transition %s: no such record: %w", id, domain.ErrConflict)
	}
	if rec.Status != from {
		return fmt.Errorf("transition %s: status %s, expected %s: %w", id, rec.Status, from, domain.ErrConflict)
	}
	applyTransition(&rec, to, l.opts.now())
	l.records[id] = rec
	return nil
}

func (l *memoryLedger) MarkFailed(ctx context.Context, id string, stage domain.Status, segment int, cause error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("mark failed %s: no such record: %w", id, domain.ErrConflict)
	}
	applyFailure(&rec, stage, segment, cause, l.opts.now())
	l.records[id] = rec
	return nil
}

func (l *memoryLedger) CompleteWithSummary(ctx context.Context, id string, summary domain.FinalSummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return fmt.Errorf("complete %s: no such record: %w", id, domain.ErrConflict)
	}
	if rec.Status != domain.StatusSummarizing {
		return fmt.Errorf("complete %s: status %s: %w", id, rec.Status, domain.ErrConflict)
	}
	applyCompletion(&rec, l.opts.now())
	l.records[id] = rec
	l.summaries[id] = summary
	return nil
}

func (l *memoryLedger) Record(ctx context.Context, id string) (domain.ProcessingRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	return rec, ok, nil
}

func (l *memoryLedger) Summary(ctx context.Context, id string) (domain.FinalSummary, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum, ok := l.summaries[id]
	return sum, ok, nil
}

func (l *memoryLedger) Close() error { return nil }
