package summarizer

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/retry"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

type implSummarizer struct {
	svc    Service
	cfg    config.SummarizerConfig
	retry  retry.Policy
	gate   *semaphore.Semaphore
	logger logger.Logger
}

// New creates a Summarizer. gate is the run-wide external call limiter
// shared with the other stages.
func New(svc Service, cfg config.SummarizerConfig, pol retry.Policy, gate *semaphore.Semaphore, log logger.Logger) Summarizer {
	return &implSummarizer{
		svc:    svc,
		cfg:    cfg,
		retry:  pol,
		gate:   gate,
		logger: log,
	}
}
