package segmenter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/internal/logger"
)

// cutExecutor materializes the output file of every ffmpeg cut, and can be
// told to fail from a given call number on.
type cutExecutor struct {
	cuts      int
	failAfter int // fail when cuts exceeds this; 0 means never
}

func (e *cutExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	out, _, err := e.ExecuteCapture(ctx, name, args...)
	return out, err
}

func (e *cutExecutor) ExecuteCapture(ctx context.Context, name string, args ...string) (string, string, error) {
	e.cuts++
	if e.failAfter > 0 && e.cuts > e.failAfter {
		return "", "", errors.New("exit status 1")
	}
	// Output path is the final argument.
	dst := args[len(args)-1]
	if err := os.WriteFile(dst, []byte("wav"), 0o644); err != nil {
		return "", "", err
	}
	return "", "", nil
}

func artifact(t *testing.T, dur time.Duration) domain.AudioArtifact {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(path, []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	return domain.AudioArtifact{StreamID: "s1", Path: path, Duration: dur, Bytes: 4}
}

func testConfig() config.SegmenterConfig {
	return config.SegmenterConfig{MaxSegmentSeconds: 900, SearchWindowSeconds: 60}
}

func TestSegmentProducesContiguousIndices(t *testing.T) {
	art := artifact(t, 50*time.Minute)
	s := New(testConfig(), "ffmpeg", &cutExecutor{}, logger.Nop())

	segs, err := s.Segment(context.Background(), art)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("len = %d, want 4", len(segs))
	}
	for i, seg := range segs {
		if seg.Index != i {
			t.Errorf("segs[%d].Index = %d", i, seg.Index)
		}
		if seg.StreamID != "s1" {
			t.Errorf("segs[%d].StreamID = %s", i, seg.StreamID)
		}
		if _, err := os.Stat(seg.Path); err != nil {
			t.Errorf("segs[%d] file missing: %v", i, err)
		}
	}
	if segs[len(segs)-1].End != art.Duration {
		t.Errorf("last segment ends at %v, want %v", segs[len(segs)-1].End, art.Duration)
	}
}

func TestSegmentReusesExistingFiles(t *testing.T) {
	art := artifact(t, 50*time.Minute)
	segDir := filepath.Join(filepath.Dir(art.Path), "segments")
	os.MkdirAll(segDir, 0o755)
	// First two segments survive from a previous attempt.
	os.WriteFile(filepath.Join(segDir, "seg_0000.wav"), []byte("wav"), 0o644)
	os.WriteFile(filepath.Join(segDir, "seg_0001.wav"), []byte("wav"), 0o644)

	exec := &cutExecutor{}
	s := New(testConfig(), "ffmpeg", exec, logger.Nop())

	segs, err := s.Segment(context.Background(), art)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 4 {
		t.Fatalf("len = %d, want 4", len(segs))
	}
	if exec.cuts != 2 {
		t.Errorf("cuts = %d, want 2 (first two reused)", exec.cuts)
	}
}

func TestSegmentFailureCarriesIndex(t *testing.T) {
	art := artifact(t, 50*time.Minute)
	s := New(testConfig(), "ffmpeg", &cutExecutor{failAfter: 2}, logger.Nop())

	_, err := s.Segment(context.Background(), art)
	var sf *domain.SegmentFailure
	if !errors.As(err, &sf) {
		t.Fatalf("Segment() error = %v, want SegmentFailure", err)
	}
	if sf.Index != 2 {
		t.Errorf("failed index = %d, want 2", sf.Index)
	}
}

func TestSegmentShortStreamSingleSegment(t *testing.T) {
	art := artifact(t, 10*time.Minute)
	s := New(testConfig(), "ffmpeg", &cutExecutor{}, logger.Nop())

	segs, err := s.Segment(context.Background(), art)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("len = %d, want 1", len(segs))
	}
	if segs[0].Start != 0 || segs[0].End != art.Duration {
		t.Errorf("segment = %+v, want [0, %v)", segs[0], art.Duration)
	}
}
