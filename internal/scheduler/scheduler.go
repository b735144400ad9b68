package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

func (s *implScheduler) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.cfg.Cron, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("parse cron %q: %w", s.cfg.Cron, err)
	}

	c.Start()
	s.logger.Info(ctx, "scheduler started: cron %q, overlap policy %s, run timeout %s",
		s.cfg.Cron, s.cfg.OnOverlap, s.cfg.RunTimeout())

	<-ctx.Done()
	<-c.Stop().Done()

	// Let an in-flight run finish before reporting shutdown.
	s.running.Lock()
	s.running.Unlock() //nolint:staticcheck // lock only to drain the active run
	s.logger.Info(ctx, "scheduler stopped")
	return ctx.Err()
}

func (s *implScheduler) RunOnce(ctx context.Context) (domain.RunReport, error) {
	s.running.Lock()
	defer s.running.Unlock()
	return s.runWithTimeout(ctx)
}

// trigger handles one cron firing. Single-flight: if a run is active the
// trigger is dropped, or remembered once under the queue policy so the
// active run is followed by exactly one more regardless of how many
// triggers piled up.
func (s *implScheduler) trigger(ctx context.Context) {
	if !s.running.TryLock() {
		if s.cfg.OnOverlap == "queue" {
			s.pending.Store(true)
			s.logger.Info(ctx, "trigger while run active: queued")
		} else {
			s.metrics.TriggersDropped.Inc()
			s.logger.Info(ctx, "trigger while run active: dropped")
		}
		return
	}
	defer s.running.Unlock()

	for {
		if _, err := s.runWithTimeout(ctx); err != nil {
			s.logger.Error(ctx, "run failed: %v", err)
		}
		if !s.pending.CompareAndSwap(true, false) {
			return
		}
		s.logger.Info(ctx, "running queued trigger")
	}
}

func (s *implScheduler) runWithTimeout(ctx context.Context) (domain.RunReport, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout())
	defer cancel()

	report, err := s.pipeline.Run(runCtx)
	if err != nil {
		return report, err
	}
	s.logger.Info(ctx, "run %s: discovered=%d completed=%d failed=%d skipped=%d in %s",
		report.RunID, report.Discovered, report.Completed, report.Failed, report.Skipped,
		report.FinishedAt.Sub(report.StartedAt))
	return report, nil
}
