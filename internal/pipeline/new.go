package pipeline

import (
	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/discovery"
	"github.com/hansardlabs/streamdigest/internal/downloader"
	"github.com/hansardlabs/streamdigest/internal/ledger"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/metrics"
	"github.com/hansardlabs/streamdigest/internal/segmenter"
	"github.com/hansardlabs/streamdigest/internal/summarizer"
	"github.com/hansardlabs/streamdigest/internal/transcriber"
)

type implPipeline struct {
	discovery   discovery.Discoverer
	downloader  downloader.Downloader
	segmenter   segmenter.Segmenter
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	ledger      ledger.Ledger
	cfg         config.PipelineConfig
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// New wires the pipeline's stages together. The external call gate is
// shared by the transcriber and summarizer, which hold it themselves; the
// pipeline only bounds the stream axis.
func New(
	disc discovery.Discoverer,
	down downloader.Downloader,
	seg segmenter.Segmenter,
	trans transcriber.Transcriber,
	sum summarizer.Summarizer,
	led ledger.Ledger,
	cfg config.PipelineConfig,
	met *metrics.Metrics,
	log logger.Logger,
) Pipeline {
	return &implPipeline{
		discovery:   disc,
		downloader:  down,
		segmenter:   seg,
		transcriber: trans,
		summarizer:  sum,
		ledger:      led,
		cfg:         cfg,
		metrics:     met,
		logger:      log,
	}
}
