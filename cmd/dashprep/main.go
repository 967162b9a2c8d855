// Command dashprep transcodes one video into a resolution ladder and
// packages every rendition for DASH delivery using ffprobe, ffmpeg and
// Bento4.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/therealutkarshpriyadarshi/dashprep/internal/cache"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/config"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/logging"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/metrics"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/pipeline"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/storage"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/tracing"
	"github.com/therealutkarshpriyadarshi/dashprep/internal/transcoder"
)

const usage = "Usage: dashprep <path_to_video_file>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil))
}

// run executes the command and returns the process exit status. A nil
// runner uses the real tools.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, runner transcoder.Runner) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	inputPath := args[0]

	if _, err := pipeline.ValidateInput(inputPath); err != nil {
		fmt.Fprintf(stderr, "Input file '%s' does not exist.\n", inputPath)
		return 1
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(stderr, "dashprep: %v\n", err)
		return 1
	}

	logCfg := logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if cfg.Logging.Output == "stdout" {
		logCfg.Writer = stdout
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "dashprep: %v\n", err)
		return 1
	}

	closer, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		logger.ErrorWithErr("Failed to initialize tracing", err)
		return 1
	}
	defer closer.Close()

	if runner == nil {
		runner = transcoder.NewExecRunner(stderr)
	}

	var opts []pipeline.Option
	if cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache)
		if err != nil {
			// Detection still works without the cache
			logger.WithError(err).Warn("HDR cache unavailable, probing every run")
		} else {
			defer c.Close()
			opts = append(opts, pipeline.WithCache(c))
		}
	}
	if cfg.Storage.Enabled {
		stor, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			logger.ErrorWithErr("Failed to initialize storage", err)
			return 1
		}
		opts = append(opts, pipeline.WithPublisher(stor))
	}

	p, err := pipeline.New(cfg, runner, logger, opts...)
	if err != nil {
		logger.ErrorWithErr("Failed to create pipeline", err)
		return 1
	}

	report, err := p.Run(ctx, inputPath)
	if cfg.Metrics.Textfile != "" {
		if werr := metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			logger.ErrorWithErr("Failed to write metrics", werr)
		}
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrInputNotFound) {
			fmt.Fprintf(stderr, "Input file '%s' does not exist.\n", inputPath)
		} else {
			logger.ErrorWithErr("Run aborted", err)
		}
		return 1
	}

	if cfg.Pipeline.FailOnStepError && !report.Succeeded() {
		return 1
	}
	return 0
}
