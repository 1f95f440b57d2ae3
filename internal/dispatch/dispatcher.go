// Package dispatch runs the encode jobs of a batch on a bounded pool of
// workers and aggregates their outcomes.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/maauso/musicvideo/internal/encode"
	"github.com/maauso/musicvideo/internal/job"
	"github.com/maauso/musicvideo/internal/storage"
)

// Dispatcher executes encode jobs concurrently. A failing job never stops
// its siblings; only context cancellation ends a batch early.
type Dispatcher struct {
	runner  Runner
	store   storage.Storage
	repo    job.Repository
	logger  *slog.Logger
	workers int
	timeout time.Duration
	publish bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers sets the number of concurrent encoder processes.
// Values below 1 select one worker per CPU.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithJobTimeout limits how long a single encode may run. Zero disables the limit.
func WithJobTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithPublishing uploads every finished video through the storage backend.
func WithPublishing(enabled bool) Option {
	return func(d *Dispatcher) {
		d.publish = enabled
	}
}

// New creates a Dispatcher.
func New(runner Runner, store storage.Storage, repo job.Repository, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		runner:  runner,
		store:   store,
		repo:    repo,
		logger:  logger,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Workers returns the configured pool size.
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Run executes jobs and returns once every job has reached a terminal state.
//
// Workers pull job indices from an unbuffered channel, so each job is handed
// out exactly once. When ctx is cancelled no further jobs are handed out,
// running encoders are killed, their partial outputs removed, and all
// unfinished jobs are reported as cancelled.
func (d *Dispatcher) Run(ctx context.Context, batchID string, jobs []encode.Job) *Result {
	start := time.Now()
	agg := newAggregator()

	records := make([]*job.Job, len(jobs))
	for i, ej := range jobs {
		rec := job.New(batchID, i)
		rec.AudioPath = ej.Audio.Path
		rec.ImagePath = ej.Image.Path
		rec.OutputPath = ej.OutputPath
		records[i] = rec
		d.save(ctx, rec)
	}

	if len(jobs) == 0 {
		return agg.result(batchID, time.Since(start))
	}

	workers := min(d.workers, len(jobs))
	d.logger.Info("dispatching batch",
		slog.String("batch_id", batchID),
		slog.Int("jobs", len(jobs)),
		slog.Int("workers", workers),
	)

	queue := make(chan int)
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			for i := range queue {
				d.runOne(ctx, batchID, jobs[i], records[i], agg)
			}
			return nil
		})
	}

	dispatched := 0
feed:
	for i := range jobs {
		select {
		case queue <- i:
			dispatched++
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	_ = g.Wait()

	for i := dispatched; i < len(jobs); i++ {
		d.cancelJob(ctx, jobs[i], records[i], agg)
	}

	res := agg.result(batchID, time.Since(start))
	d.logger.Info("batch finished",
		slog.String("batch_id", batchID),
		slog.Int("succeeded", len(res.Succeeded)),
		slog.Int("failed", len(res.Failed)),
		slog.Int("cancelled", len(res.Cancelled)),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (d *Dispatcher) runOne(ctx context.Context, batchID string, ej encode.Job, rec *job.Job, agg *aggregator) {
	if ctx.Err() != nil {
		d.cancelJob(ctx, ej, rec, agg)
		return
	}

	logger := d.logger.With(
		slog.String("job_id", rec.ID),
		slog.String("audio", ej.Audio.Path),
	)

	d.transition(rec, job.StatusRunning, rec.Start())
	d.save(ctx, rec)
	logger.Debug("encoding",
		slog.String("image", ej.Image.Path),
		slog.String("output", ej.OutputPath),
		slog.String("codec", string(ej.VideoCodec)),
		slog.String("filter", ej.Filter),
	)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if d.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
	}
	err := d.runner.Run(runCtx, ej)
	timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()

	if err == nil {
		err = verifyOutput(ej.OutputPath)
	}

	switch {
	case err == nil:
		d.finish(ctx, batchID, ej, rec, agg, logger)
	case ctx.Err() != nil:
		d.removePartial(ctx, ej, rec, logger)
		d.cancelJob(ctx, ej, rec, agg)
	case timedOut:
		reason := fmt.Sprintf("timed out after %s", d.timeout)
		d.removePartial(ctx, ej, rec, logger)
		d.transition(rec, job.StatusTimedOut, rec.Timeout(reason))
		d.save(ctx, rec)
		agg.failure(ej.Audio.Path, reason)
		logger.Error("encode timed out", slog.Duration("timeout", d.timeout))
	default:
		d.removePartial(ctx, ej, rec, logger)
		d.fail(ctx, ej, rec, agg, err, logger)
	}
}

// finish records a produced video, publishing it first when enabled.
func (d *Dispatcher) finish(ctx context.Context, batchID string, ej encode.Job, rec *job.Job, agg *aggregator, logger *slog.Logger) {
	url := ""
	if d.publish && d.store.CanUpload() {
		var err error
		url, err = d.upload(ctx, batchID, ej.OutputPath)
		if err != nil {
			d.fail(ctx, ej, rec, agg, err, logger)
			return
		}
	}

	rec.SetOutput(ej.OutputPath, url)
	d.transition(rec, job.StatusCompleted, rec.Complete())
	d.save(ctx, rec)
	agg.success(ej.OutputPath, url)

	attrs := []any{
		slog.String("output", ej.OutputPath),
		slog.Duration("duration", rec.Duration()),
	}
	if url != "" {
		attrs = append(attrs, slog.String("url", url))
	}
	logger.Info("video created", attrs...)
}

func (d *Dispatcher) upload(ctx context.Context, batchID, output string) (string, error) {
	f, err := d.store.Open(ctx, output)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	defer func() { _ = f.Close() }()

	url, err := d.store.Upload(ctx, path.Join(batchID, filepath.Base(output)), f)
	if err != nil {
		return "", fmt.Errorf("publish: %w", err)
	}
	return url, nil
}

func (d *Dispatcher) fail(ctx context.Context, ej encode.Job, rec *job.Job, agg *aggregator, err error, logger *slog.Logger) {
	reason := err.Error()
	d.transition(rec, job.StatusFailed, rec.Fail(reason))
	d.save(ctx, rec)
	agg.failure(ej.Audio.Path, reason)

	var encErr *EncodeError
	if errors.As(err, &encErr) {
		logger.Error("encode failed",
			slog.String("error", encErr.Err.Error()),
			slog.String("stderr", encErr.Stderr),
		)
		return
	}
	logger.Error("encode failed", slog.String("error", reason))
}

func (d *Dispatcher) cancelJob(ctx context.Context, ej encode.Job, rec *job.Job, agg *aggregator) {
	d.transition(rec, job.StatusCancelled, rec.Cancel())
	d.save(ctx, rec)
	agg.cancel(ej.Audio.Path)
}

// removePartial deletes whatever the encoder left at the output path. It
// runs detached from ctx so cleanup still happens after an interrupt.
func (d *Dispatcher) removePartial(ctx context.Context, ej encode.Job, rec *job.Job, logger *slog.Logger) {
	if err := d.store.Cleanup(context.WithoutCancel(ctx), []string{ej.OutputPath}); err != nil {
		logger.Warn("failed to remove partial output",
			slog.String("output", ej.OutputPath),
			slog.String("error", err.Error()),
		)
		return
	}
	rec.ClearOutput()
}

// transition logs a rejected status change. The record keeps its previous status.
func (d *Dispatcher) transition(rec *job.Job, to job.Status, err error) {
	if err == nil {
		return
	}
	d.logger.Warn("invalid job transition",
		slog.String("job_id", rec.ID),
		slog.String("from", string(rec.GetStatus())),
		slog.String("to", string(to)),
		slog.String("error", err.Error()),
	)
}

func (d *Dispatcher) save(ctx context.Context, rec *job.Job) {
	if err := d.repo.Save(context.WithoutCancel(ctx), rec); err != nil {
		d.logger.Warn("failed to record job",
			slog.String("job_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}
}

// verifyOutput checks that a clean encoder exit actually left a video behind.
func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmptyOutput, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrEmptyOutput, path)
	}
	return nil
}
