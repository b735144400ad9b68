package downloader

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Downloader fetches a stream's audio track to local disk. Download is
// idempotent per stream: an artifact already on disk is reused instead of
// re-fetched, so a retried stream resumes from where the last attempt left
// usable work.
type Downloader interface {
	Download(ctx context.Context, cand domain.StreamCandidate) (domain.AudioArtifact, error)
}
