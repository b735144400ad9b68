package discovery

import (
	"context"
	"sort"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Discover queries every channel, merges the results, drops streams the
// ledger says are done or held by another run, orders what is left
// (oldest unprocessed first by default so newer streams wait their turn),
// and caps the result at the configured per-run maximum.
//
// A single channel failing never aborts discovery; the channel is skipped
// and the rest proceed.
func (d *implDiscoverer) Discover(ctx context.Context) ([]domain.StreamCandidate, error) {
	var merged []domain.StreamCandidate
	seen := make(map[string]bool)

	for _, src := range d.sources {
		candidates, err := src.List(ctx)
		if err != nil {
			d.logger.Warn(ctx, "channel %s discovery failed, skipping: %v", src.Name(), err)
			continue
		}
		for _, c := range candidates {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			merged = append(merged, c)
		}
	}

	if len(merged) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(merged))
	for _, c := range merged {
		ids = append(ids, c.ID)
	}
	records, err := d.ledger.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	kept := merged[:0]
	for _, c := range merged {
		rec, exists := records[c.ID]
		if exists && !d.ledger.Claimable(rec) {
			d.logger.Debug(ctx, "skipping %s: status=%s attempts=%d", c.ID, rec.Status, rec.AttemptCount)
			continue
		}
		kept = append(kept, c)
	}

	sortCandidates(kept, d.cfg.Order)

	if len(kept) > d.cfg.MaxStreams {
		kept = kept[:d.cfg.MaxStreams]
	}

	d.logger.Info(ctx, "discovery: %d candidates after dedup (cap %d)", len(kept), d.cfg.MaxStreams)
	return kept, nil
}

// sortCandidates orders deterministically: by recorded-at, stream id as the
// tie-break so equal timestamps cannot reorder between runs.
func sortCandidates(cands []domain.StreamCandidate, order string) {
	newestFirst := order == "newest_first"
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if !a.RecordedAt.Equal(b.RecordedAt) {
			if newestFirst {
				return a.RecordedAt.After(b.RecordedAt)
			}
			return a.RecordedAt.Before(b.RecordedAt)
		}
		return a.ID < b.ID
	})
}
