package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/domain"
	"github.com/hansardlabs/streamdigest/internal/logger"
)

// fakeExecutor scripts responses per command name.
type fakeExecutor struct {
	calls   []string
	stdout  map[string]string
	stderr  map[string]string
	failing map[string]bool
	onRun   func(name string, args []string)
}

func (e *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	out, _, err := e.ExecuteCapture(ctx, name, args...)
	return out, err
}

func (e *fakeExecutor) ExecuteCapture(ctx context.Context, name string, args ...string) (string, string, error) {
	e.calls = append(e.calls, name)
	if e.onRun != nil {
		e.onRun(name, args)
	}
	if e.failing[name] {
		return "", e.stderr[name], errors.New("exit status 1")
	}
	return e.stdout[name], e.stderr[name], nil
}

func candidate() domain.StreamCandidate {
	return domain.StreamCandidate{ID: "abc123", Title: "Plenary Sitting", Chamber: domain.ChamberSenate}
}

func TestDownloadFetchesAndProbes(t *testing.T) {
	workdir := t.TempDir()
	audioPath := filepath.Join(workdir, "abc123", "audio.wav")

	exec := &fakeExecutor{
		stdout: map[string]string{"ffprobe": "5400.25\n"},
		onRun: func(name string, _ []string) {
			if name == "yt-dlp" {
				os.WriteFile(audioPath, []byte("RIFFdata"), 0o644)
			}
		},
	}

	d := New(config.DownloadConfig{Workdir: workdir, YtDlpPath: "yt-dlp", FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}, exec, logger.Nop())

	art, err := d.Download(context.Background(), candidate())
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if art.Path != audioPath {
		t.Errorf("Path = %s, want %s", art.Path, audioPath)
	}
	if want := 5400*time.Second + 250*time.Millisecond; art.Duration != want {
		t.Errorf("Duration = %v, want %v", art.Duration, want)
	}
	if art.Bytes != 8 {
		t.Errorf("Bytes = %d, want 8", art.Bytes)
	}
}

func TestDownloadReusesExistingArtifact(t *testing.T) {
	workdir := t.TempDir()
	dir := filepath.Join(workdir, "abc123")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "audio.wav"), []byte("RIFFdata"), 0o644)

	exec := &fakeExecutor{stdout: map[string]string{"ffprobe": "100.0"}}
	d := New(config.DownloadConfig{Workdir: workdir, YtDlpPath: "yt-dlp", FFprobePath: "ffprobe"}, exec, logger.Nop())

	if _, err := d.Download(context.Background(), candidate()); err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	for _, c := range exec.calls {
		if c == "yt-dlp" {
			t.Fatal("yt-dlp invoked despite existing artifact")
		}
	}
}

func TestDownloadErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"members only", "ERROR: Join this channel to get access to members-only content", domain.ErrAuthRequired},
		{"private", "ERROR: Private video. Sign in if you've been granted access", domain.ErrAuthRequired},
		{"removed", "ERROR: Video unavailable. This video has been removed", domain.ErrNotFound},
		{"rate limited", "ERROR: HTTP Error 429: Too Many Requests", domain.ErrRateLimited},
		{"generic", "ERROR: Unable to download webpage: connection reset", domain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{
				failing: map[string]bool{"yt-dlp": true},
				stderr:  map[string]string{"yt-dlp": tt.stderr},
			}
			d := New(config.DownloadConfig{Workdir: t.TempDir(), YtDlpPath: "yt-dlp"}, exec, logger.Nop())

			_, err := d.Download(context.Background(), candidate())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Download() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDownloadBadProbeOutput(t *testing.T) {
	workdir := t.TempDir()
	exec := &fakeExecutor{
		stdout: map[string]string{"ffprobe": "N/A"},
		onRun: func(name string, _ []string) {
			if name == "yt-dlp" {
				os.WriteFile(filepath.Join(workdir, "abc123", "audio.wav"), []byte("x"), 0o644)
			}
		},
	}
	d := New(config.DownloadConfig{Workdir: workdir, YtDlpPath: "yt-dlp", FFprobePath: "ffprobe"}, exec, logger.Nop())

	_, err := d.Download(context.Background(), candidate())
	if !errors.Is(err, domain.ErrInvalidAudio) {
		t.Fatalf("Download() error = %v, want ErrInvalidAudio", err)
	}
	if !strings.Contains(err.Error(), "N/A") {
		t.Errorf("error should carry probe output, got %v", err)
	}
}
