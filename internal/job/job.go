// Package job provides the Job entity that tracks one encode of a batch,
// with its state machine and a repository for lookups while the batch runs.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/maauso/musicvideo/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusInQueue indicates the job is waiting for a free worker.
	StatusInQueue Status = "IN_QUEUE"
	// StatusRunning indicates the encoder process is running.
	StatusRunning Status = "RUNNING"
	// StatusCompleted indicates the output file was written.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed indicates the encoder or the upload failed.
	StatusFailed Status = "FAILED"
	// StatusCancelled indicates the batch was interrupted before the job finished.
	StatusCancelled Status = "CANCELLED"
	// StatusTimedOut indicates the encoder exceeded the per-job time limit.
	StatusTimedOut Status = "TIMED_OUT"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
var validTransitions = map[Status][]Status{
	StatusInQueue:   {StatusRunning, StatusCancelled},
	StatusRunning:   {StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut},
	StatusCompleted: {},
	StatusFailed:    {},
	StatusCancelled: {},
	StatusTimedOut:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job is the record of one encode: an audio file, its image and the
// resulting video.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// BatchID groups the jobs of one invocation.
	BatchID string
	// Index is the position of the job in its batch.
	Index int
	// Status is the current job state.
	Status Status
	// Error contains the failure description if the job failed.
	Error string
	// AudioPath is the path to the source audio.
	AudioPath string
	// ImagePath is the path to the source image.
	ImagePath string
	// OutputPath is the path of the video being written.
	OutputPath string
	// VideoURL is the object storage URL once the output is published.
	VideoURL string
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when the encoder was started.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a job for position index of batchID in IN_QUEUE status.
func New(batchID string, index int) *Job {
	return NewWithID(id.ForJob(batchID, index), batchID, index)
}

// NewWithID creates a job with the given ID in IN_QUEUE status.
func NewWithID(jobID, batchID string, index int) *Job {
	now := time.Now()
	return &Job{
		ID:        jobID,
		BatchID:   batchID,
		Index:     index,
		Status:    StatusInQueue,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusRunning:
		j.StartedAt = j.UpdatedAt
	case StatusCompleted, StatusFailed, StatusCancelled, StatusTimedOut:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from IN_QUEUE to RUNNING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusRunning)
}

// Complete transitions the job to COMPLETED state.
func (j *Job) Complete() error {
	return j.TransitionTo(StatusCompleted)
}

// Fail transitions the job to FAILED state with an error message.
func (j *Job) Fail(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Cancel transitions the job to CANCELLED state.
func (j *Job) Cancel() error {
	return j.TransitionTo(StatusCancelled)
}

// Timeout transitions the job to TIMED_OUT state with an error message.
func (j *Job) Timeout(errMsg string) error {
	j.mu.Lock()
	j.Error = errMsg
	j.mu.Unlock()
	return j.TransitionTo(StatusTimedOut)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetOutput sets the output video path and optional published URL.
func (j *Job) SetOutput(videoPath, videoURL string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputPath = videoPath
	j.VideoURL = videoURL
	j.UpdatedAt = time.Now()
}

// ClearOutput clears the output path and URL after a partial file was removed.
func (j *Job) ClearOutput() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.OutputPath = ""
	j.VideoURL = ""
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusCompleted ||
		j.Status == StatusFailed ||
		j.Status == StatusCancelled ||
		j.Status == StatusTimedOut
}

// Duration returns how long the encoder ran, or zero if it never finished.
func (j *Job) Duration() time.Duration {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.StartedAt.IsZero() || j.CompletedAt.IsZero() {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}

// Clone creates a copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:          j.ID,
		BatchID:     j.BatchID,
		Index:       j.Index,
		Status:      j.Status,
		Error:       j.Error,
		AudioPath:   j.AudioPath,
		ImagePath:   j.ImagePath,
		OutputPath:  j.OutputPath,
		VideoURL:    j.VideoURL,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
