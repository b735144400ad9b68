package segmenter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Segment plans the cut points for the artifact and materializes one WAV
// file per span under <artifact dir>/segments/. Files from a previous
// attempt are kept; only missing segments are cut. A cut failure is
// reported with its segment index so the record can note where to resume.
func (s *implSegmenter) Segment(ctx context.Context, art domain.AudioArtifact) ([]domain.AudioSegment, error) {
	silences := s.silencePoints(ctx, art)
	spans := planSpans(art.Duration, s.cfg.MaxSegment(), s.cfg.SearchWindow(), silences)
	if len(spans) == 0 {
		return nil, fmt.Errorf("segment %s: %w", art.StreamID, domain.ErrInvalidAudio)
	}

	segDir := filepath.Join(filepath.Dir(art.Path), "segments")
	if err := os.MkdirAll(segDir, 0o755); err != nil {
		return nil, fmt.Errorf("create segment dir: %w", err)
	}

	segments := make([]domain.AudioSegment, 0, len(spans))
	for i, sp := range spans {
		segPath := filepath.Join(segDir, fmt.Sprintf("seg_%04d.wav", i))

		info, err := os.Stat(segPath)
		if err != nil {
			if err := s.cut(ctx, art.Path, segPath, sp); err != nil {
				return nil, &domain.SegmentFailure{Index: i, Err: err}
			}
			if info, err = os.Stat(segPath); err != nil {
				return nil, &domain.SegmentFailure{Index: i, Err: fmt.Errorf("stat cut output: %w", err)}
			}
		}

		segments = append(segments, domain.AudioSegment{
			StreamID: art.StreamID,
			Index:    i,
			Start:    sp.Start,
			End:      sp.End,
			Bytes:    info.Size(),
			Path:     segPath,
		})
	}

	s.logger.Info(ctx, "segmented %s into %d segments (%s total)", art.StreamID, len(segments), art.Duration)
	return segments, nil
}

// silencePoints returns detected silence midpoints, or nil when detection
// is disabled or fails. Detection failure degrades to fixed cuts rather
// than failing the stream.
func (s *implSegmenter) silencePoints(ctx context.Context, art domain.AudioArtifact) []time.Duration {
	if !s.cfg.SilenceDetection {
		return nil
	}
	points, err := s.detectSilence(ctx, art.Path)
	if err != nil {
		s.logger.Warn(ctx, "silence detection failed for %s, falling back to fixed cuts: %v", art.StreamID, err)
		return nil
	}
	return points
}

func (s *implSegmenter) cut(ctx context.Context, srcPath, dstPath string, sp span) error {
	args := []string{
		"-ss", ffmpegSeconds(sp.Start),
		"-t", ffmpegSeconds(sp.End - sp.Start),
		"-i", srcPath,
		"-c", "copy",
		"-y",
		dstPath,
	}
	if _, err := s.executor.Execute(ctx, s.ffmpeg, args...); err != nil {
		return fmt.Errorf("ffmpeg cut [%s, %s): %w", sp.Start, sp.End, err)
	}
	return nil
}

func ffmpegSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
