package transcriber

import (
	"context"
	"sort"
	"sync"

	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

// promptTailRunes bounds how much of the previous chunk is threaded into
// the next segment's prompt when running sequentially.
const promptTailRunes = 600

func (t *implTranscriber) Transcribe(ctx context.Context, segments []domain.AudioSegment) ([]domain.TranscriptChunk, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	if t.cfg.Fanout <= 1 {
		return t.sequential(ctx, segments)
	}
	return t.concurrent(ctx, segments)
}

// sequential transcribes segments in order, passing the tail of each chunk
// as the next segment's prompt so the model keeps names and numbers
// consistent across cut points. Only possible without fan-out.
func (t *implTranscriber) sequential(ctx context.Context, segments []domain.AudioSegment) ([]domain.TranscriptChunk, error) {
	chunks := make([]domain.TranscriptChunk, 0, len(segments))
	prompt := t.cfg.Prompt
	for _, seg := range segments {
		text, err := t.callService(ctx, seg, prompt)
		if err != nil {
			return chunks, &domain.SegmentFailure{Index: seg.Index, Err: err}
		}
		chunks = append(chunks, domain.TranscriptChunk{StreamID: seg.StreamID, Index: seg.Index, Text: text})
		prompt = tail(text, promptTailRunes)
	}
	return chunks, nil
}

// concurrent fans segments out under the per-stream fanout bound. Every
// call uses the static prompt; completion order is arbitrary and the
// result is reassembled by segment index.
func (t *implTranscriber) concurrent(ctx context.Context, segments []domain.AudioSegment) ([]domain.TranscriptChunk, error) {
	fanout := semaphore.New(t.cfg.Fanout)

	var (
		mu     sync.Mutex
		chunks []domain.TranscriptChunk
		failed *domain.SegmentFailure
		wg     sync.WaitGroup
	)

	for _, seg := range segments {
		if err := fanout.Acquire(ctx); err != nil {
			break
		}
		wg.Add(1)
		go func(seg domain.AudioSegment) {
			defer wg.Done()
			defer fanout.Release()

			text, err := t.callService(ctx, seg, t.cfg.Prompt)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Report the earliest failed segment so resume starts there.
				if failed == nil || seg.Index < failed.Index {
					failed = &domain.SegmentFailure{Index: seg.Index, Err: err}
				}
				return
			}
			chunks = append(chunks, domain.TranscriptChunk{StreamID: seg.StreamID, Index: seg.Index, Text: text})
		}(seg)
	}
	wg.Wait()

	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })

	if failed != nil {
		return chunks, failed
	}
	if err := ctx.Err(); err != nil {
		return chunks, err
	}
	return chunks, nil
}

// callService makes one retried service call under the global call gate.
func (t *implTranscriber) callService(ctx context.Context, seg domain.AudioSegment, prompt string) (string, error) {
	var text string
	err := t.retry.Do(ctx, func() error {
		if err := t.gate.Acquire(ctx); err != nil {
			return err
		}
		defer t.gate.Release()

		out, err := t.svc.Transcribe(ctx, seg, prompt)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	return text, err
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
