package segmenter

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Segmenter splits a stream's audio into size-bounded segments that
// together partition the full recording: contiguous 0-based indices, no
// gaps, no overlaps, each at most the configured maximum duration.
//
// Segmentation is deterministic for a given artifact and resumable: cut
// files already on disk are kept, so a retried stream only re-cuts what a
// previous attempt did not finish.
type Segmenter interface {
	Segment(ctx context.Context, art domain.AudioArtifact) ([]domain.AudioSegment, error)
}
