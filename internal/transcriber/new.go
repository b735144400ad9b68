package transcriber

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/retry"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

type implTranscriber struct {
	svc    Service
	cfg    config.TranscriberConfig
	retry  retry.Policy
	gate   *semaphore.Semaphore
	logger logger.Logger
}

// New creates a Transcriber. gate is the run-wide external call limiter
// shared with the other stages; every service call holds a slot.
func New(svc Service, cfg config.TranscriberConfig, pol retry.Policy, gate *semaphore.Semaphore, log logger.Logger) Transcriber {
	return &implTranscriber{
		svc:    svc,
		cfg:    cfg,
		retry:  pol,
		gate:   gate,
		logger: log,
	}
}
