// Package bootstrap provides dependency initialization for musicvideo.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maauso/musicvideo/internal/batch"
	"github.com/maauso/musicvideo/internal/config"
	"github.com/maauso/musicvideo/internal/dispatch"
	"github.com/maauso/musicvideo/internal/job"
	"github.com/maauso/musicvideo/internal/storage"
)

// Dependencies holds everything a batch run needs.
type Dependencies struct {
	Runner     *dispatch.FFmpegRunner
	Dispatcher *dispatch.Dispatcher
	Repository *job.MemoryRepository
	Service    *batch.Service
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	// Initialize storage
	store, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	runner := dispatch.NewFFmpegRunner(cfg.FFmpegPath)

	// Initialize job repository
	repo := job.NewMemoryRepository()

	dispatcher := dispatch.New(runner, store, repo, logger,
		dispatch.WithWorkers(cfg.Workers),
		dispatch.WithJobTimeout(cfg.JobTimeout),
		dispatch.WithPublishing(cfg.S3Enabled()),
	)

	return &Dependencies{
		Runner:     runner,
		Dispatcher: dispatcher,
		Repository: repo,
		Service:    batch.NewService(store, dispatcher, logger),
	}, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(ctx, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 publishing configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
			slog.String("prefix", cfg.S3Prefix),
		)
		return s3Store, nil
	}

	logger.Debug("local storage configured")
	return storage.NewLocalStorage(), nil
}
