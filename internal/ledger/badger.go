package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

type badgerLedger struct {
	db   *badger.DB
	opts Options
}

// New opens a badger-backed ledger at path. The caller owns Close.
func New(path string, opts Options) (Ledger, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w: %w", err, domain.ErrUnavailable)
	}

	badgerOpts := badger.DefaultOptions(path)
	badgerOpts.Logger = nil // badger's own logging is too chatty

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w: %w", err, domain.ErrUnavailable)
	}

	return &badgerLedger{db: db, opts: opts}, nil
}

// newInMemory opens an ephemeral badger instance. Used by tests.
func newInMemory(opts Options) (Ledger, error) {
	badgerOpts := badger.DefaultOptions("").WithInMemory(true)
	badgerOpts.Logger = nil

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory ledger: %w: %w", err, domain.ErrUnavailable)
	}
	return &badgerLedger{db: db, opts: opts}, nil
}

func recKey(id string) []byte { return []byte("rec/" + id) }
func sumKey(id string) []byte { return []byte("sum/" + id) }

func (l *badgerLedger) Claimable(rec domain.ProcessingRecord) bool {
	return l.opts.claimable(rec, l.opts.now())
}

func (l *badgerLedger) ExistingIDs(ctx context.Context, ids []string) (map[string]domain.ProcessingRecord, error) {
	out := make(map[string]domain.ProcessingRecord, len(ids))
	err := l.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(recKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var rec domain.ProcessingRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			out[id] = rec
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("lookup records", err)
	}
	return out, nil
}

func (l *badgerLedger) Claim(ctx context.Context, cand domain.StreamCandidate, runID string) (domain.ProcessingRecord, error) {
	now := l.opts.now()
	var out domain.ProcessingRecord

	err := l.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(recKey(cand.ID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			out = newRecord(cand, runID, now)
			return putRecord(txn, out)
		}
		if err != nil {
			return err
		}

		var rec domain.ProcessingRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return err
		}

		if !l.opts.claimable(rec, now) {
			return domain.ErrConflict
		}
		applyClaim(&rec, runID, now)
		out = rec
		return putRecord(txn, rec)
	})
	if err != nil {
		return domain.ProcessingRecord{}, storeErr("claim "+cand.ID, err)
	}
	return out, nil
}

func (l *badgerLedger) Transition(ctx context.Context, id string, from, to domain.Status) error {
	now := l.opts.now()
	err := l.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		if rec.Status != from {
			return domain.ErrConflict
		}
		applyTransition(&rec, to, now)
		return putRecord(txn, rec)
	})
	return storeErr("transition "+id, err)
}

func (l *badgerLedger) MarkFailed(ctx context.Context, id string, stage domain.Status, segment int, cause error) error {
	now := l.opts.now()
	err := l.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		applyFailure(&rec, stage, segment, cause, now)
		return putRecord(txn, rec)
	})
	return storeErr("mark failed "+id, err)
}

func (l *badgerLedger) CompleteWithSummary(ctx context.Context, id string, summary domain.FinalSummary) error {
	now := l.opts.now()
	err := l.db.Update(func(txn *badger.Txn) error {
		rec, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		if rec.Status != domain.StatusSummarizing {
			return domain.ErrConflict
		}
		applyCompletion(&rec, now)
		if err := putRecord(txn, rec); err != nil {
			return err
		}
		data, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		return txn.Set(sumKey(id), data)
	})
	return storeErr("complete "+id, err)
}

func (l *badgerLedger) Record(ctx context.Context, id string) (domain.ProcessingRecord, bool, error) {
	var rec domain.ProcessingRecord
	found := false
	err := l.db.View(func(txn *badger.Txn) error {
		got, err := getRecord(txn, id)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		rec = got
		found = true
		return nil
	})
	if err != nil {
		return domain.ProcessingRecord{}, false, storeErr("read record "+id, err)
	}
	return rec, found, nil
}

func (l *badgerLedger) Summary(ctx context.Context, id string) (domain.FinalSummary, bool, error) {
	var sum domain.FinalSummary
	found := false
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sumKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sum)
		})
	})
	if err != nil {
		return domain.FinalSummary{}, false, storeErr("read summary "+id, err)
	}
	return sum, found, nil
}

func (l *badgerLedger) Close() error {
	return l.db.Close()
}

func getRecord(txn *badger.Txn, id string) (domain.ProcessingRecord, error) {
	item, err := txn.Get(recKey(id))
	if err != nil {
		return domain.ProcessingRecord{}, err
	}
	var rec domain.ProcessingRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func putRecord(txn *badger.Txn, rec domain.ProcessingRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(recKey(rec.StreamID), data)
}

// storeErr maps backend failures onto the ledger error contract: conflicts
// stay conflicts (including badger's own optimistic-txn conflicts), anything
// else is infrastructure.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: no such record: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w: %w", op, err, domain.ErrUnavailable)
}
