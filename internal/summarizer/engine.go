package summarizer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

const mapPrompt = `You are summarizing one part of a parliamentary sitting transcript.
Write a detailed markdown summary of this part: motions raised, members speaking, positions taken, figures cited, and decisions reached, in the order they occur.
Do not invent content and do not editorialize.

%s
Transcript part:
---
%s
---`

const reducePrompt = `The following are consecutive partial summaries of one parliamentary sitting.
Merge them into a single coherent markdown summary. Preserve chronological order, drop repetition, and keep every motion, speaker position, and decision.

Partial summaries:
---
%s
---`

const synthesisPrompt = `The following summarizes a parliamentary sitting titled %q recorded on %s.
Produce the final markdown digest: a one-line headline, then sections for debates, motions and votes, and notable statements. Keep it faithful to the material below.

Material:
---
%s
---`

func (s *implSummarizer) Summarize(ctx context.Context, cand domain.StreamCandidate, chunks []domain.TranscriptChunk) (domain.FinalSummary, error) {
	transcript := joinChunks(chunks)
	if strings.TrimSpace(transcript) == "" {
		return domain.FinalSummary{}, fmt.Errorf("summarize %s: empty transcript", cand.ID)
	}

	windowRunes := s.cfg.InputBudgetRunes - s.cfg.HeadroomRunes - s.cfg.CarryRunes
	windows := partitionWindows(transcript, windowRunes)
	s.logger.Info(ctx, "summarizing %s: %d transcript runes across %d windows",
		cand.ID, len([]rune(transcript)), len(windows))

	frags, err := s.mapWindows(ctx, windows)
	if err != nil {
		return domain.FinalSummary{}, err
	}

	reduceBudget := s.cfg.InputBudgetRunes - s.cfg.HeadroomRunes
	rounds := 0
	for totalRunes(frags) > reduceBudget {
		if rounds >= s.cfg.MaxReduceRounds {
			return domain.FinalSummary{}, fmt.Errorf(
				"summarize %s: %d fragments still over budget after %d reduce rounds: %w",
				cand.ID, len(frags), rounds, domain.ErrCapacity)
		}
		batches := batchFragments(frags, reduceBudget)
		// Each round must strictly shrink the fragment count, otherwise
		// reduction can loop forever on incompressible content.
		if len(batches) >= len(frags) {
			return domain.FinalSummary{}, fmt.Errorf(
				"summarize %s: reduction stalled at %d fragments: %w",
				cand.ID, len(frags), domain.ErrCapacity)
		}
		if frags, err = s.reduceBatches(ctx, batches); err != nil {
			return domain.FinalSummary{}, err
		}
		rounds++
	}

	text, err := s.synthesize(ctx, cand, frags)
	if err != nil {
		return domain.FinalSummary{}, err
	}

	return domain.FinalSummary{
		StreamID:     cand.ID,
		Text:         text,
		GeneratedAt:  time.Now().UTC(),
		ModelVersion: s.svc.ModelVersion(),
	}, nil
}

// mapWindows summarizes every window under the fanout bound. Each window's
// prompt carries the tail of the previous window's source text so the
// model sees how the part it is given began. Carry comes from the source,
// not from produced fragments, so windows stay independent and can run
// concurrently.
func (s *implSummarizer) mapWindows(ctx context.Context, windows []string) ([]domain.SummaryFragment, error) {
	fanout := semaphore.New(s.cfg.Fanout)

	frags := make([]domain.SummaryFragment, len(windows))
	errs := make([]error, len(windows))
	var wg sync.WaitGroup

	for i, window := range windows {
		if err := fanout.Acquire(ctx); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, window string) {
			defer wg.Done()
			defer fanout.Release()

			carry := ""
			if i > 0 {
				carry = fmt.Sprintf("The previous part ended with:\n%s\n",
					carryTail(windows[i-1], s.cfg.CarryRunes))
			}
			text, err := s.callService(ctx, fmt.Sprintf(mapPrompt, carry, window))
			if err != nil {
				errs[i] = fmt.Errorf("map window %d: %w", i, err)
				return
			}
			frags[i] = domain.SummaryFragment{Index: i, Text: text}
		}(i, window)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return frags, nil
}

// reduceBatches merges each batch of consecutive fragments into one. The
// output fragments are re-indexed in batch order.
func (s *implSummarizer) reduceBatches(ctx context.Context, batches [][]domain.SummaryFragment) ([]domain.SummaryFragment, error) {
	fanout := semaphore.New(s.cfg.Fanout)

	out := make([]domain.SummaryFragment, len(batches))
	errs := make([]error, len(batches))
	var wg sync.WaitGroup

	for i, batch := range batches {
		if err := fanout.Acquire(ctx); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, batch []domain.SummaryFragment) {
			defer wg.Done()
			defer fanout.Release()

			text, err := s.callService(ctx, fmt.Sprintf(reducePrompt, joinFragments(batch)))
			if err != nil {
				errs[i] = fmt.Errorf("reduce batch %d: %w", i, err)
				return
			}
			out[i] = domain.SummaryFragment{Index: i, Text: text}
		}(i, batch)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *implSummarizer) synthesize(ctx context.Context, cand domain.StreamCandidate, frags []domain.SummaryFragment) (string, error) {
	prompt := fmt.Sprintf(synthesisPrompt, cand.Title, cand.RecordedAt.Format("2006-01-02"), joinFragments(frags))
	text, err := s.callService(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("synthesize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// callService makes one retried model call under the global call gate.
func (s *implSummarizer) callService(ctx context.Context, prompt string) (string, error) {
	var text string
	err := s.retry.Do(ctx, func() error {
		if err := s.gate.Acquire(ctx); err != nil {
			return err
		}
		defer s.gate.Release()

		out, err := s.svc.Summarize(ctx, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}

func joinChunks(chunks []domain.TranscriptChunk) string {
	ordered := make([]domain.TranscriptChunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	parts := make([]string, 0, len(ordered))
	for _, c := range ordered {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}

func joinFragments(frags []domain.SummaryFragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}
