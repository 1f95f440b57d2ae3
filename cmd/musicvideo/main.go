// Package main provides the entry point for the musicvideo command.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maauso/musicvideo/internal/bootstrap"
	"github.com/maauso/musicvideo/internal/config"
	"github.com/maauso/musicvideo/internal/dispatch"
	"github.com/maauso/musicvideo/internal/report"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFatal       = 1
	exitJobsFailed  = 2
	exitInterrupted = 130
)

const installHint = `ffmpeg is required but could not be started.
Install it with your package manager (apt install ffmpeg, brew install ffmpeg,
winget install ffmpeg) or point FFMPEG_PATH at the binary.`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	releaseOnCancel(ctx, stop)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// releaseOnCancel calls stop as soon as ctx is done, so a second interrupt
// during cleanup terminates the process immediately.
func releaseOnCancel(ctx context.Context, stop context.CancelFunc) {
	go func() {
		<-ctx.Done()
		stop()
	}()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := config.ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			return exitOK
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFatal
	}

	if opts.ListFormats {
		_, _ = fmt.Fprint(stdout, report.Formats())
		return exitOK
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: load config: %v\n", err)
		return exitFatal
	}

	// Create structured logger
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	deps, err := bootstrap.NewDependencies(ctx, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: initialize dependencies: %v\n", err)
		return exitFatal
	}

	version, err := deps.Runner.Check(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "error: %v\n%s\n", err, installHint)
		return exitFatal
	}

	logger.Info("starting musicvideo",
		slog.String("ffmpeg", version),
		slog.String("container", opts.Container),
		slog.String("resolution", opts.Resolution),
		slog.String("output_dir", opts.OutputDir),
		slog.Int("workers", deps.Dispatcher.Workers()),
		slog.Bool("s3_enabled", cfg.S3Enabled()),
	)

	res, err := deps.Service.Run(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("interrupted before dispatch")
			return exitInterrupted
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFatal
	}

	records, err := deps.Repository.ListByBatch(context.WithoutCancel(ctx), res.BatchID)
	if err != nil {
		logger.Warn("failed to load job records",
			slog.String("batch_id", res.BatchID),
			slog.String("error", err.Error()),
		)
	}

	_, _ = fmt.Fprint(stdout, report.Render(res, records))
	return exitCode(ctx, res)
}

func exitCode(ctx context.Context, res *dispatch.Result) int {
	switch {
	case len(res.Cancelled) > 0 || ctx.Err() != nil:
		return exitInterrupted
	case len(res.Failed) > 0:
		return exitJobsFailed
	default:
		return exitOK
	}
}
