// Package batch runs one music video batch end to end: it collects the
// inputs, pairs them, builds the encode jobs and hands them to the dispatcher.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"time"

	"github.com/maauso/musicvideo/internal/config"
	"github.com/maauso/musicvideo/internal/dispatch"
	"github.com/maauso/musicvideo/internal/encode"
	"github.com/maauso/musicvideo/internal/job/id"
	"github.com/maauso/musicvideo/internal/media"
	"github.com/maauso/musicvideo/internal/pairing"
	"github.com/maauso/musicvideo/internal/storage"
)

// Dispatcher executes the jobs of a batch.
type Dispatcher interface {
	Run(ctx context.Context, batchID string, jobs []encode.Job) *dispatch.Result
}

// Service orchestrates a batch. Everything up to dispatch is validated
// before the first encoder starts, so an input problem never leaves
// half-written videos behind.
type Service struct {
	store      storage.Storage
	dispatcher Dispatcher
	logger     *slog.Logger
	rand       *rand.Rand
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the source used for random image order.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		s.rand = r
	}
}

// WithBatchID overrides the batch id generator.
func WithBatchID(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewService creates a new Service.
func NewService(store storage.Storage, dispatcher Dispatcher, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		newID:      id.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the batch described by opts. A non-nil error means the batch
// was aborted before dispatch; per-job failures are reported in the Result.
func (s *Service) Run(ctx context.Context, opts *config.Options) (*dispatch.Result, error) {
	start := time.Now()

	jobs, err := s.Plan(ctx, opts)
	if err != nil {
		return nil, err
	}

	res := s.dispatcher.Run(ctx, s.newID(), jobs)

	s.logger.Info("batch complete",
		slog.String("batch_id", res.BatchID),
		slog.Int("videos", len(res.Succeeded)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Plan collects and pairs the inputs, prepares the output directory and
// builds one encode job per audio file without starting any encoder.
func (s *Service) Plan(ctx context.Context, opts *config.Options) ([]encode.Job, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	container, err := encode.ParseContainer(opts.Container)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidOptions, err)
	}
	resolution, err := encode.ParseResolution(opts.Resolution)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidOptions, err)
	}

	audio, err := media.Collect(opts.AudioPath, media.Audio, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("collect audio: %w", err)
	}
	images, err := media.Collect(opts.ImagePath, media.Image, opts.Recursive)
	if err != nil {
		return nil, fmt.Errorf("collect images: %w", err)
	}
	s.logger.Info("inputs collected",
		slog.Int("audio", len(audio)),
		slog.Int("images", len(images)),
	)

	pairs, err := pairing.Assign(audio, images, pairing.Options{Random: opts.RandomOrder, Rand: s.rand})
	if err != nil {
		return nil, fmt.Errorf("pair inputs: %w", err)
	}

	used := make([]media.File, len(pairs))
	for i, p := range pairs {
		used[i] = p.Image
	}
	sizes, err := media.ProbeImages(used)
	if err != nil {
		return nil, fmt.Errorf("probe images: %w", err)
	}

	outDir, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	if err := s.store.PrepareDir(ctx, outDir); err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}

	jobs, err := encode.BuildAll(pairs, sizes, encode.Options{
		OutputDir:  outDir,
		Container:  container,
		UseX265:    opts.UseX265,
		Resolution: resolution,
	})
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
