package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/hansardlabs/streamdigest/internal/config"
	"github.com/hansardlabs/streamdigest/internal/discovery"
	"github.com/hansardlabs/streamdigest/internal/downloader"
	"github.com/hansardlabs/streamdigest/internal/ledger"
	"github.com/hansardlabs/streamdigest/internal/logger"
	"github.com/hansardlabs/streamdigest/internal/metrics"
	"github.com/hansardlabs/streamdigest/internal/pipeline"
	"github.com/hansardlabs/streamdigest/internal/retry"
	"github.com/hansardlabs/streamdigest/internal/scheduler"
	"github.com/hansardlabs/streamdigest/internal/segmenter"
	"github.com/hansardlabs/streamdigest/internal/summarizer"
	"github.com/hansardlabs/streamdigest/internal/transcriber"
	"github.com/hansardlabs/streamdigest/pkg/executor"
	"github.com/hansardlabs/streamdigest/pkg/semaphore"
)

const usage = `usage: streamdigest <command> [flags]

commands:
  run    execute one pipeline run and exit
  cron   run on the configured schedule until terminated
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	configPath := flags.String("config", "config.yaml", "path to config file")
	flags.Parse(os.Args[2:])

	// Missing .env is fine; the environment may be set by the deployment.
	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx := context.Background()

	switch command {
	case "run", "cron":
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := realMain(ctx, command, cfg, log); err != nil {
		log.Error(ctx, "%v", err)
		os.Exit(1)
	}
}

func realMain(ctx context.Context, command string, cfg *config.Config, log logger.Logger) error {
	if err := os.MkdirAll(cfg.Download.Workdir, 0o755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}

	led, err := ledger.New(cfg.Ledger.Path, ledger.Options{
		MaxAttempts: cfg.Ledger.MaxAttempts,
		ClaimLease:  cfg.Ledger.ClaimLease(),
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	sched, met, err := buildScheduler(cfg, led, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ops.Addr != "" {
		go serveOps(ctx, cfg.Ops.Addr, met, log)
	}

	switch command {
	case "run":
		report, err := sched.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		log.Info(ctx, "run %s done: discovered=%d completed=%d failed=%d skipped=%d",
			report.RunID, report.Discovered, report.Completed, report.Failed, report.Skipped)
		return nil
	default:
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	}
}

func buildScheduler(cfg *config.Config, led ledger.Ledger, log logger.Logger) (scheduler.Scheduler, *metrics.Metrics, error) {
	exec := executor.New()
	met := metrics.New()

	pol := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Retry.BaseDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Retry.MaxDelayMS) * time.Millisecond,
		Jitter:      cfg.Retry.Jitter,
	}

	// One gate for every external call across all streams and stages.
	gate := semaphore.New(cfg.Pipeline.GlobalCallLimit)

	sources := make([]discovery.ChannelSource, 0, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		sources = append(sources, discovery.NewFeedSource(ch))
	}
	disc := discovery.New(sources, led, cfg.Discovery, log)

	down := downloader.New(cfg.Download, exec, log)
	seg := segmenter.New(cfg.Segmenter, cfg.Download.FFmpegPath, exec, log)

	sttSvc := transcriber.NewOpenAIService(cfg.Transcriber, os.Getenv("OPENAI_API_KEY"))
	trans := transcriber.New(sttSvc, cfg.Transcriber, pol, gate, log)

	geminiKeys := splitKeys(os.Getenv("GEMINI_API_KEYS"))
	llmSvc, err := summarizer.NewGeminiService(geminiKeys, cfg.Summarizer.Model, log)
	if err != nil {
		return nil, nil, fmt.Errorf("summarizer: %w (set GEMINI_API_KEYS)", err)
	}
	sum := summarizer.New(llmSvc, cfg.Summarizer, pol, gate, log)

	p := pipeline.New(disc, down, seg, trans, sum, led, cfg.Pipeline, met, log)
	return scheduler.New(p, cfg.Scheduler, met, log), met, nil
}

// serveOps exposes liveness and metrics on a side port.
func serveOps(ctx context.Context, addr string, met *metrics.Metrics, log logger.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", met.Handler())

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "ops server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(ctx, "ops server: %v", err)
	}
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
