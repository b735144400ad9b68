package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hansardlabs/streamdigest/internal/domain"
)

// Download fetches the stream's audio as 16kHz mono WAV under
// <workdir>/<stream-id>/audio.wav. An existing artifact with a readable
// duration is reused without touching the network.
func (d *implDownloader) Download(ctx context.Context, cand domain.StreamCandidate) (domain.AudioArtifact, error) {
	dir := filepath.Join(d.cfg.Workdir, cand.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.AudioArtifact{}, fmt.Errorf("create stream workdir: %w", err)
	}
	audioPath := filepath.Join(dir, "audio.wav")

	if art, ok := d.reuseExisting(ctx, cand.ID, audioPath); ok {
		return art, nil
	}

	d.logger.Info(ctx, "downloading audio for %s (%s)", cand.ID, cand.Title)

	// yt-dlp fetches the best audio-only format and ffmpeg (invoked by
	// yt-dlp's postprocessor) converts to 16kHz mono WAV, the input the
	// transcription service handles best.
	args := []string{
		"--no-progress",
		"--extract-audio",
		"--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ar 16000 -ac 1",
		"--ffmpeg-location", d.cfg.FFmpegPath,
		"-o", audioPath,
		cand.ID,
	}

	if _, stderr, err := d.executor.ExecuteCapture(ctx, d.cfg.YtDlpPath, args...); err != nil {
		return domain.AudioArtifact{}, classifyDownloadError(cand.ID, stderr, err)
	}

	return d.stat(ctx, cand.ID, audioPath)
}

// reuseExisting returns the artifact for an already downloaded file, if any.
// A file that exists but cannot be probed is treated as a partial download
// and removed so the fetch starts clean.
func (d *implDownloader) reuseExisting(ctx context.Context, streamID, audioPath string) (domain.AudioArtifact, bool) {
	if _, err := os.Stat(audioPath); err != nil {
		return domain.AudioArtifact{}, false
	}
	art, err := d.stat(ctx, streamID, audioPath)
	if err != nil {
		d.logger.Warn(ctx, "discarding unreadable artifact %s: %v", audioPath, err)
		os.Remove(audioPath)
		return domain.AudioArtifact{}, false
	}
	d.logger.Info(ctx, "reusing downloaded audio for %s (%s)", streamID, art.Duration)
	return art, true
}

func (d *implDownloader) stat(ctx context.Context, streamID, audioPath string) (domain.AudioArtifact, error) {
	info, err := os.Stat(audioPath)
	if err != nil {
		return domain.AudioArtifact{}, fmt.Errorf("stat artifact: %w", err)
	}

	dur, err := d.probeDuration(ctx, audioPath)
	if err != nil {
		return domain.AudioArtifact{}, err
	}

	return domain.AudioArtifact{
		StreamID: streamID,
		Path:     audioPath,
		Duration: dur,
		Bytes:    info.Size(),
	}, nil
}

func (d *implDownloader) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := d.executor.Execute(ctx, d.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w: %w", path, err, domain.ErrInvalidAudio)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: bad duration %q: %w", path, out, domain.ErrInvalidAudio)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// classifyDownloadError maps yt-dlp stderr onto the pipeline's error
// taxonomy so the caller can tell a dead link from a flaky network.
func classifyDownloadError(streamID, stderr string, err error) error {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "members-only") ||
		strings.Contains(lower, "private video") ||
		strings.Contains(lower, "sign in to confirm") ||
		strings.Contains(lower, "login required"):
		return fmt.Errorf("download %s: %s: %w", streamID, firstLine(stderr), domain.ErrAuthRequired)
	case strings.Contains(lower, "video unavailable") ||
		strings.Contains(lower, "has been removed") ||
		strings.Contains(lower, "404"):
		return fmt.Errorf("download %s: %s: %w", streamID, firstLine(stderr), domain.ErrNotFound)
	case strings.Contains(lower, "429") || strings.Contains(lower, "too many requests"):
		return fmt.Errorf("download %s: %s: %w", streamID, firstLine(stderr), domain.ErrRateLimited)
	default:
		return fmt.Errorf("download %s: %v: %w", streamID, err, domain.ErrNetwork)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
