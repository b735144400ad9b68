package downloader

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/pkg/executor"
)

type implDownloader struct {
	cfg      config.DownloadConfig
	executor executor.Executor
	logger   logger.Logger
}

// New creates a Downloader that shells out to yt-dlp and ffprobe.
func New(cfg config.DownloadConfig, exec executor.Executor, log logger.Logger) Downloader {
	return &implDownloader{
		cfg:      cfg,
		executor: exec,
		logger:   log,
	}
}
