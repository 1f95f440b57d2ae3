package job

import "context"

// Repository defines the interface for job persistence.
type Repository interface {
	// Save persists a job. An existing job with the same ID is replaced.
	Save(ctx context.Context, job *Job) error

	// ListByBatch returns the jobs of one batch ordered by index.
	ListByBatch(ctx context.Context, batchID string) ([]*Job, error)
}
