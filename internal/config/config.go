package config

import (
	"fmt"
	"time"
)

type Config struct {
	Channels    []ChannelConfig   `yaml:"channels"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Download    DownloadConfig    `yaml:"download"`
	Segmenter   SegmenterConfig   `yaml:"segmenter"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Scheduler   SchedulerConfig   `yaml:"scheduler"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Retry       RetryConfig       `yaml:"retry"`
	Logging     LoggingConfig     `yaml:"logging"`
	Ops         OpsConfig         `yaml:"ops"`
}

type ChannelConfig struct {
	Name    string `yaml:"name"`
	Chamber string `yaml:"chamber"`
	URL     string `yaml:"url"`
}

type DiscoveryConfig struct {
	MaxStreams int `yaml:"max_streams"`
	// Order is "oldest_first" (default) or "newest_first".
	Order string `yaml:"order"`
}

type DownloadConfig struct {
	Workdir     string `yaml:"workdir"`
	YtDlpPath   string `yaml:"ytdlp_path"`
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type SegmenterConfig struct {
	MaxSegmentSeconds int `yaml:"max_segment_seconds"`
	// SilenceDetection enables silence-aware cut points; on any detection
	// failure the segmenter degrades to fixed-duration cuts.
	SilenceDetection    bool    `yaml:"silence_detection"`
	SilenceNoiseDB      float64 `yaml:"silence_noise_db"`
	SilenceMinSeconds   float64 `yaml:"silence_min_seconds"`
	SearchWindowSeconds int     `yaml:"search_window_seconds"`
}

type TranscriberConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// Fanout bounds concurrent transcription calls per stream. With a
	// fanout of 1 the stage runs sequentially and threads the previous
	// chunk's tail through as the service prompt.
	Fanout int    `yaml:"fanout"`
	Prompt string `yaml:"prompt"`
}

type SummarizerConfig struct {
	Model string `yaml:"model"`
	// InputBudgetRunes is the summarization service's per-call input limit.
	InputBudgetRunes int `yaml:"input_budget_runes"`
	// HeadroomRunes is reserved out of the budget for instructions and
	// expected output.
	HeadroomRunes int `yaml:"headroom_runes"`
	// CarryRunes bounds the carried context passed from one map window to
	// the next to preserve narrative continuity.
	CarryRunes      int `yaml:"carry_runes"`
	Fanout          int `yaml:"fanout"`
	MaxReduceRounds int `yaml:"max_reduce_rounds"`
}

type PipelineConfig struct {
	// StreamWorkers bounds how many streams are processed concurrently.
	StreamWorkers int `yaml:"stream_workers"`
	// GlobalCallLimit is the combined ceiling on in-flight external calls
	// across all streams and stages.
	GlobalCallLimit int `yaml:"global_call_limit"`
}

type SchedulerConfig struct {
	Cron string `yaml:"cron"`
	// OnOverlap is "drop" (default) or "queue": what to do with a trigger
	// that fires while a run is active.
	OnOverlap         string `yaml:"on_overlap"`
	RunTimeoutMinutes int    `yaml:"run_timeout_minutes"`
}

type LedgerConfig struct {
	Path             string `yaml:"path"`
	MaxAttempts      int    `yaml:"max_attempts"`
	ClaimLeaseMinute int    `yaml:"claim_lease_minutes"`
}

type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"`
	BaseDelayMS int     `yaml:"base_delay_ms"`
	MaxDelayMS  int     `yaml:"max_delay_ms"`
	Jitter      float64 `yaml:"jitter"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OpsConfig struct {
	// Addr is the listen address for /healthz and /metrics. Empty disables
	// the ops server.
	Addr string `yaml:"addr"`
}

func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return fmt.Errorf("channels: at least one source channel is required")
	}
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channels[%d].name is required", i)
		}
		if ch.URL == "" {
			return fmt.Errorf("channels[%d].url is required", i)
		}
		switch ch.Chamber {
		case "national_assembly", "senate":
		default:
			return fmt.Errorf("channels[%d].chamber must be national_assembly or senate", i)
		}
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path is required")
	}
	if c.Download.Workdir == "" {
		return fmt.Errorf("download.workdir is required")
	}

	if c.Discovery.MaxStreams == 0 {
		c.Discovery.MaxStreams = 5
	}
	if c.Discovery.Order == "" {
		c.Discovery.Order = "oldest_first"
	}
	if c.Download.YtDlpPath == "" {
		c.Download.YtDlpPath = "yt-dlp"
	}
	if c.Download.FFmpegPath == "" {
		c.Download.FFmpegPath = "ffmpeg"
	}
	if c.Download.FFprobePath == "" {
		c.Download.FFprobePath = "ffprobe"
	}
	if c.Segmenter.MaxSegmentSeconds == 0 {
		c.Segmenter.MaxSegmentSeconds = 900
	}
	if c.Segmenter.SilenceNoiseDB == 0 {
		c.Segmenter.SilenceNoiseDB = -30
	}
	if c.Segmenter.SilenceMinSeconds == 0 {
		c.Segmenter.SilenceMinSeconds = 0.5
	}
	if c.Segmenter.SearchWindowSeconds == 0 {
		c.Segmenter.SearchWindowSeconds = 60
	}
	if c.Transcriber.BaseURL == "" {
		c.Transcriber.BaseURL = "https://api.openai.com/v1"
	}
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = "whisper-1"
	}
	if c.Transcriber.Fanout == 0 {
		c.Transcriber.Fanout = 2
	}
	if c.Summarizer.Model == "" {
		c.Summarizer.Model = "gemini-2.5-flash"
	}
	if c.Summarizer.InputBudgetRunes == 0 {
		c.Summarizer.InputBudgetRunes = 110_000
	}
	if c.Summarizer.HeadroomRunes == 0 {
		c.Summarizer.HeadroomRunes = 18_000
	}
	if c.Summarizer.CarryRunes == 0 {
		c.Summarizer.CarryRunes = 1_500
	}
	if c.Summarizer.Fanout == 0 {
		c.Summarizer.Fanout = 2
	}
	if c.Summarizer.MaxReduceRounds == 0 {
		c.Summarizer.MaxReduceRounds = 8
	}
	if c.Summarizer.HeadroomRunes+c.Summarizer.CarryRunes >= c.Summarizer.InputBudgetRunes {
		return fmt.Errorf("summarizer: headroom_runes + carry_runes must be below input_budget_runes")
	}
	if c.Pipeline.StreamWorkers == 0 {
		c.Pipeline.StreamWorkers = 2
	}
	if c.Pipeline.GlobalCallLimit == 0 {
		c.Pipeline.GlobalCallLimit = 4
	}
	if c.Scheduler.Cron == "" {
		c.Scheduler.Cron = "0 */4 * * *"
	}
	switch c.Scheduler.OnOverlap {
	case "":
		c.Scheduler.OnOverlap = "drop"
	case "drop", "queue":
	default:
		return fmt.Errorf("scheduler.on_overlap must be drop or queue")
	}
	if c.Scheduler.RunTimeoutMinutes == 0 {
		c.Scheduler.RunTimeoutMinutes = 180
	}
	if c.Ledger.MaxAttempts == 0 {
		c.Ledger.MaxAttempts = 3
	}
	if c.Ledger.ClaimLeaseMinute == 0 {
		c.Ledger.ClaimLeaseMinute = 240
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 4
	}
	if c.Retry.BaseDelayMS == 0 {
		c.Retry.BaseDelayMS = 500
	}
	if c.Retry.MaxDelayMS == 0 {
		c.Retry.MaxDelayMS = 30_000
	}
	if c.Retry.Jitter == 0 {
		c.Retry.Jitter = 0.5
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// MaxSegment returns the per-segment duration bound.
func (c SegmenterConfig) MaxSegment() time.Duration {
	return time.Duration(c.MaxSegmentSeconds) * time.Second
}

// SearchWindow returns how far below a boundary the segmenter may move a
// cut to land on silence.
func (c SegmenterConfig) SearchWindow() time.Duration {
	return time.Duration(c.SearchWindowSeconds) * time.Second
}

// RunTimeout returns the per-run deadline.
func (c SchedulerConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutMinutes) * time.Minute
}

// ClaimLease returns how long a ledger claim is honored before it is
// treated as abandoned.
func (c LedgerConfig) ClaimLease() time.Duration {
	return time.Duration(c.ClaimLeaseMinute) * time.Minute
}
