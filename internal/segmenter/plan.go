package segmenter

import (
	"sort"
	"time"
)

// span is one planned cut: a half-open slice [Start, End) of the recording,
// except the final span whose End equals the total duration.
type span struct {
	Start time.Duration
	End   time.Duration
}

// planSpans computes the cut points for a recording of the given total
// duration. Each span is at most maxSeg long. When silence midpoints are
// supplied, a cut that would land mid-sentence is pulled back to the
// nearest silence within searchWindow below the naive boundary; otherwise
// the cut stays at the fixed boundary.
//
// The plan is a pure function of its inputs, so re-running it for the same
// artifact always yields the same spans.
func planSpans(total, maxSeg, searchWindow time.Duration, silences []time.Duration) []span {
	if total <= 0 {
		return nil
	}
	if total <= maxSeg {
		return []span{{Start: 0, End: total}}
	}

	sorted := make([]time.Duration, len(silences))
	copy(sorted, silences)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var spans []span
	start := time.Duration(0)
	for total-start > maxSeg {
		boundary := start + maxSeg
		cut := boundary
		if s, ok := nearestSilenceBelow(sorted, boundary, boundary-searchWindow); ok && s > start {
			cut = s
		}
		spans = append(spans, span{Start: start, End: cut})
		start = cut
	}
	spans = append(spans, span{Start: start, End: total})
	return spans
}

// nearestSilenceBelow returns the largest silence point in (floor, boundary].
func nearestSilenceBelow(sorted []time.Duration, boundary, floor time.Duration) (time.Duration, bool) {
	// First index strictly above boundary; the candidate sits just before it.
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > boundary })
	if i == 0 {
		return 0, false
	}
	s := sorted[i-1]
	if s <= floor {
		return 0, false
	}
	return s, true
}
