// Package storage handles the files a batch writes: preparing the output
// directory, removing partial outputs and optionally publishing finished
// videos to S3-compatible object storage.
package storage

import (
	"context"
	"io"
)

// Storage defines the file operations the dispatcher depends on.
type Storage interface {
	// PrepareDir creates dir if needed and checks that files can be created in it.
	PrepareDir(ctx context.Context, dir string) error

	// Open opens a finished output for reading.
	// The caller is responsible for closing the returned ReadCloser.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Cleanup removes the specified files.
	// It continues cleanup even if some files fail to delete.
	Cleanup(ctx context.Context, paths []string) error

	// Upload stores data under key and returns its public URL.
	// Returns ErrS3NotConfigured if no object storage is configured.
	Upload(ctx context.Context, key string, data io.Reader) (url string, err error)

	// CanUpload reports whether Upload is available.
	CanUpload() bool
}
