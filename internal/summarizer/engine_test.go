package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/retry"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

// countingService answers map, reduce, and synthesis prompts with fixed-size
// outputs so the engine's budget arithmetic is fully controlled.
type countingService struct {
	mu        sync.Mutex
	maps      int
	reduces   int
	syntheses int
	mapOut    func(n int) string
	reduceOut string
	err       error
}

func (s *countingService) ModelVersion() string { return "test-model-1" }

func (s *countingService) Summarize(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	switch {
	case strings.HasPrefix(prompt, "You are summarizing one part"):
		s.maps++
		return s.mapOut(s.maps - 1), nil
	case strings.HasPrefix(prompt, "The following are consecutive partial"):
		s.reduces++
		return s.reduceOut, nil
	case strings.HasPrefix(prompt, "The following summarizes"):
		s.syntheses++
		return "# Final Digest\n\n" + prompt, nil
	default:
		return "", fmt.Errorf("unrecognized prompt: %.40s", prompt)
	}
}

// testChunks yields 10 chunks of 100 identical runes. Joined with blank
// lines and windowed at 250 runes this partitions into exactly 5 windows.
func testChunks() []domain.TranscriptChunk {
	out := make([]domain.TranscriptChunk, 10)
	for i := range out {
		out[i] = domain.TranscriptChunk{StreamID: "s1", Index: i, Text: strings.Repeat("a", 100)}
	}
	return out
}

func testCandidate() domain.StreamCandidate {
	return domain.StreamCandidate{
		ID:         "s1",
		Title:      "Plenary Sitting",
		Chamber:    domain.ChamberSenate,
		RecordedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func newEngine(svc Service, fanout int) Summarizer {
	cfg := config.SummarizerConfig{
		InputBudgetRunes: 400,
		HeadroomRunes:    100,
		CarryRunes:       50,
		Fanout:           fanout,
		MaxReduceRounds:  8,
	}
	pol := retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	return New(svc, cfg, pol, semaphore.New(8), logger.Nop())
}

func TestSummarizeSmallFragmentsSkipReduce(t *testing.T) {
	svc := &countingService{mapOut: func(int) string { return strings.Repeat("m", 50) }}
	eng := newEngine(svc, 4)

	sum, err := eng.Summarize(context.Background(), testCandidate(), testChunks())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if svc.maps != 5 {
		t.Errorf("maps = %d, want 5 (one per window)", svc.maps)
	}
	if svc.reduces != 0 {
		t.Errorf("reduces = %d, want 0 (fragments fit the budget)", svc.reduces)
	}
	if svc.syntheses != 1 {
		t.Errorf("syntheses = %d, want 1", svc.syntheses)
	}
	if sum.StreamID != "s1" || sum.ModelVersion != "test-model-1" {
		t.Errorf("summary = %+v", sum)
	}
	if !strings.HasPrefix(sum.Text, "# Final Digest") {
		t.Errorf("Text = %.40q", sum.Text)
	}
}

func TestSummarizeReducesUntilBudgetFits(t *testing.T) {
	// 5 map fragments of 140 runes: 700 over a 300-rune reduce budget.
	// Round 1 batches [2,2,1] into 3 fragments of 140 (420, still over).
	// Round 2 batches [2,1] into 2 fragments of 140 (280, fits).
	svc := &countingService{
		mapOut:    func(int) string { return strings.Repeat("m", 140) },
		reduceOut: strings.Repeat("r", 140),
	}
	eng := newEngine(svc, 2)

	if _, err := eng.Summarize(context.Background(), testCandidate(), testChunks()); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if svc.maps != 5 {
		t.Errorf("maps = %d, want 5", svc.maps)
	}
	if svc.reduces != 5 {
		t.Errorf("reduces = %d, want 5 (3 in round one, 2 in round two)", svc.reduces)
	}
	if svc.syntheses != 1 {
		t.Errorf("syntheses = %d, want 1", svc.syntheses)
	}
}

func TestSummarizeIncompressibleContentIsCapacityError(t *testing.T) {
	// Every fragment alone exceeds the reduce budget, so batching cannot
	// shrink the fragment count.
	svc := &countingService{mapOut: func(int) string { return strings.Repeat("m", 400) }}
	eng := newEngine(svc, 2)

	_, err := eng.Summarize(context.Background(), testCandidate(), testChunks())
	if !errors.Is(err, domain.ErrCapacity) {
		t.Fatalf("Summarize() error = %v, want ErrCapacity", err)
	}
	if svc.syntheses != 0 {
		t.Errorf("synthesis ran despite capacity failure")
	}
}

func TestSummarizePreservesWindowOrder(t *testing.T) {
	// Sequential fanout makes map call order equal window order; the
	// synthesis input must list fragments in that same order.
	calls := 0
	svc := &orderService{mapText: func() string {
		calls++
		return fmt.Sprintf("frag%02d", calls-1)
	}}
	eng := newEngine(svc, 1)

	sum, err := eng.Summarize(context.Background(), testCandidate(), testChunks())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	prev := -1
	for i := 0; i < 5; i++ {
		pos := strings.Index(sum.Text, fmt.Sprintf("frag%02d", i))
		if pos < 0 {
			t.Fatalf("frag%02d missing from synthesis input", i)
		}
		if pos < prev {
			t.Errorf("frag%02d out of order", i)
		}
		prev = pos
	}
}

type orderService struct {
	mapText func() string
}

func (s *orderService) ModelVersion() string { return "test-model-1" }

func (s *orderService) Summarize(ctx context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "The following summarizes") {
		return prompt, nil
	}
	return s.mapText(), nil
}

func TestSummarizeServiceErrorPropagates(t *testing.T) {
	svc := &countingService{err: fmt.Errorf("boom: %w", domain.ErrContextTooLong)}
	eng := newEngine(svc, 2)

	_, err := eng.Summarize(context.Background(), testCandidate(), testChunks())
	if !errors.Is(err, domain.ErrContextTooLong) {
		t.Fatalf("Summarize() error = %v, want ErrContextTooLong", err)
	}
}

func TestSummarizeEmptyTranscript(t *testing.T) {
	svc := &countingService{mapOut: func(int) string { return "x" }}
	eng := newEngine(svc, 2)

	_, err := eng.Summarize(context.Background(), testCandidate(), nil)
	if err == nil {
		t.Fatal("Summarize() succeeded on empty transcript")
	}
	if svc.maps != 0 {
		t.Errorf("maps = %d, want 0", svc.maps)
	}
}
