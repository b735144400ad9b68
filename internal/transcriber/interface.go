package transcriber

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Service is one speech-to-text call: one segment in, its text out. The
// prompt seeds the model with vocabulary or the tail of the preceding
// chunk.
type Service interface {
	Transcribe(ctx context.Context, seg domain.AudioSegment, prompt string) (string, error)
}

// Transcriber runs the transcription stage for one stream: every segment
// through the service, bounded fan-out, chunks reassembled by index so the
// transcript reads in recording order no matter which call finished first.
//
// On failure the chunks that did complete are returned alongside the error,
// with the failing segment's index attached for resume.
type Transcriber interface {
	Transcribe(ctx context.Context, segments []domain.AudioSegment) ([]domain.TranscriptChunk, error)
}
