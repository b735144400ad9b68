package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/metrics"
	"github.com/hansardlabs/streamdigest/internal/pipeline"
)

type implScheduler struct {
	pipeline pipeline.Pipeline
	cfg      config.SchedulerConfig
	metrics  *metrics.Metrics
	logger   logger.Logger

	// running is held for the whole duration of a run; TryLock failing is
	// how an overlapping trigger detects the active run.
	running sync.Mutex
	pending atomic.Bool
}

// New creates a Scheduler over the given pipeline.
func New(p pipeline.Pipeline, cfg config.SchedulerConfig, met *metrics.Metrics, log logger.Logger) Scheduler {
	return &implScheduler{
		pipeline: p,
		cfg:      cfg,
		metrics:  met,
		logger:   log,
	}
}
