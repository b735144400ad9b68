package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

type outcome int

const (
	outcomeCompleted outcome = iota
	outcomeFailed
	outcomeSkipped
)

func (p *implPipeline) Run(ctx context.Context) (domain.RunReport, error) {
	runID := uuid.NewString()
	report := domain.RunReport{RunID: runID, StartedAt: time.Now().UTC()}
	log := p.logger.With("run_id", runID)

	p.metrics.RunsTotal.Inc()
	defer func() {
		report.FinishedAt = time.Now().UTC()
		p.metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}()

	candidates, err := p.discovery.Discover(ctx)
	if err != nil {
		return report, fmt.Errorf("discover: %w", err)
	}
	report.Discovered = len(candidates)
	log.Info(ctx, "run started: %d candidates", len(candidates))

	workers := semaphore.New(p.cfg.StreamWorkers)

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		infraErr error
	)

	for _, cand := range candidates {
		if err := workers.Acquire(ctx); err != nil {
			break
		}
		mu.Lock()
		aborted := infraErr != nil
		mu.Unlock()
		if aborted {
			workers.Release()
			break
		}

		wg.Add(1)
		go func(cand domain.StreamCandidate) {
			defer wg.Done()
			defer workers.Release()

			p.metrics.ActiveStreams.Inc()
			defer p.metrics.ActiveStreams.Dec()

			out, err := p.processStream(ctx, runID, cand)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if infraErr == nil {
					infraErr = err
				}
				return
			}
			switch out {
			case outcomeCompleted:
				report.Completed++
				p.metrics.StreamsCompleted.Inc()
			case outcomeFailed:
				report.Failed++
				p.metrics.StreamsFailed.Inc()
			case outcomeSkipped:
				report.Skipped++
				p.metrics.StreamsSkipped.Inc()
			}
		}(cand)
	}
	wg.Wait()

	if infraErr != nil {
		log.Error(ctx, "run aborted: %v", infraErr)
		return report, infraErr
	}
	log.Info(ctx, "run finished: %d completed, %d failed, %d skipped",
		report.Completed, report.Failed, report.Skipped)
	return report, nil
}

// processStream drives one candidate through every stage. A non-nil error
// return means the ledger itself is unavailable and the run must abort;
// per-stream failures are recorded in the ledger and reported as outcomes.
func (p *implPipeline) processStream(ctx context.Context, runID string, cand domain.StreamCandidate) (outcome, error) {
	log := p.logger.With("run_id", runID).With("stream_id", cand.ID)

	if _, err := p.ledger.Claim(ctx, cand, runID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Info(ctx, "skipped: %v", err)
			return outcomeSkipped, nil
		}
		return 0, fmt.Errorf("claim %s: %w", cand.ID, err)
	}

	if err := p.ledger.Transition(ctx, cand.ID, domain.StatusDiscovered, domain.StatusDownloading); err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusDownloading, err)
	}
	artifact, err := p.downloader.Download(ctx, cand)
	if err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusDownloading, err)
	}

	if err := p.ledger.Transition(ctx, cand.ID, domain.StatusDownloading, domain.StatusTranscribing); err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusTranscribing, err)
	}
	segments, err := p.segmenter.Segment(ctx, artifact)
	if err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusTranscribing, err)
	}
	chunks, err := p.transcriber.Transcribe(ctx, segments)
	if err != nil {
		// Chunks that did complete are kept on disk for inspection and a
		// possible manual salvage; the retry recomputes them regardless.
		p.saveChunks(ctx, log, artifact, chunks)
		return p.stageFailed(ctx, log, cand.ID, domain.StatusTranscribing, err)
	}

	if err := p.ledger.Transition(ctx, cand.ID, domain.StatusTranscribing, domain.StatusSummarizing); err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusSummarizing, err)
	}
	summary, err := p.summarizer.Summarize(ctx, cand, chunks)
	if err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusSummarizing, err)
	}

	if err := p.ledger.CompleteWithSummary(ctx, cand.ID, summary); err != nil {
		return p.stageFailed(ctx, log, cand.ID, domain.StatusSummarizing, err)
	}

	log.Info(ctx, "completed (%d segments, %d chunk(s))", len(segments), len(chunks))
	return outcomeCompleted, nil
}

// saveChunks writes completed transcript chunks under the stream's workdir.
func (p *implPipeline) saveChunks(ctx context.Context, log logger.Logger, art domain.AudioArtifact, chunks []domain.TranscriptChunk) {
	if len(chunks) == 0 {
		return
	}
	dir := filepath.Join(filepath.Dir(art.Path), "transcripts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn(ctx, "save chunks: %v", err)
		return
	}
	for _, c := range chunks {
		path := filepath.Join(dir, fmt.Sprintf("chunk_%04d.txt", c.Index))
		if err := os.WriteFile(path, []byte(c.Text), 0o644); err != nil {
			log.Warn(ctx, "save chunk %d: %v", c.Index, err)
		}
	}
	log.Info(ctx, "kept %d completed chunk(s) under %s", len(chunks), dir)
}

// stageFailed records a stage failure on the ledger and classifies the
// outcome. Ledger unavailability escalates to the run; everything else,
// including hitting the run deadline mid-stream, leaves a retryable Failed
// record behind.
func (p *implPipeline) stageFailed(ctx context.Context, log logger.Logger, id string, stage domain.Status, cause error) (outcome, error) {
	if domain.IsInfrastructure(cause) {
		return 0, fmt.Errorf("%s %s: %w", stage, id, cause)
	}

	segment := -1
	var sf *domain.SegmentFailure
	if errors.As(cause, &sf) {
		segment = sf.Index
	}

	log.Warn(ctx, "stage %s failed (segment %d): %v", stage, segment, cause)

	// MarkFailed must not be cut short by the same deadline that may have
	// produced the failure.
	markCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		markCtx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
	}
	if err := p.ledger.MarkFailed(markCtx, id, stage, segment, cause); err != nil {
		if domain.IsInfrastructure(err) {
			return 0, fmt.Errorf("mark failed %s: %w", id, err)
		}
		log.Warn(ctx, "mark failed %s: %v", id, err)
	}
	return outcomeFailed, nil
}
