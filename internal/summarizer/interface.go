package summarizer

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Service is one summarization call against the language model.
type Service interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	ModelVersion() string
}

// Summarizer condenses a full transcript into one final summary while
// never handing the service more input than its per-call budget allows.
// Long transcripts go through hierarchical map-reduce: windows are
// summarized independently, the fragments are batched and re-summarized
// until they fit a single synthesis call.
type Summarizer interface {
	Summarize(ctx context.Context, cand domain.StreamCandidate, chunks []domain.TranscriptChunk) (domain.FinalSummary, error)
}
