package segmenter

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/pkg/executor"
)

type implSegmenter struct {
	cfg      config.SegmenterConfig
	ffmpeg   string
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Segmenter that cuts audio with ffmpeg.
func New(cfg config.SegmenterConfig, ffmpegPath string, exec executor.Executor, log logger.Logger) Segmenter {
	return &implSegmenter{
		cfg:      cfg,
		ffmpeg:   ffmpegPath,
		executor: exec,
		logger:   log,
	}
}
