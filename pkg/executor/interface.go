package executor

import "context"

// Executor defines the interface for executing external commands
// (yt-dlp, ffmpeg, ffprobe).
type Executor interface {
	// Execute runs a command and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteCapture runs a command and returns stdout and stderr
	// separately. Some tools (ffmpeg filters) report on stderr even on
	// success.
	ExecuteCapture(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}
