package pipeline

import (
	"context"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Pipeline executes one full processing run: discover candidates, then
// drive each one through download, segmentation, transcription, and
// summarization under the configured concurrency bounds.
//
// A run is never atomic across streams. One stream failing is recorded and
// the rest continue; only ledger unavailability aborts the run itself.
type Pipeline interface {
	Run(ctx context.Context) (domain.RunReport, error)
}
