package dispatch

import (
	"slices"
	"sync"
	"time"
)

// Result is the outcome of a batch. It is complete and read-only once
// Dispatcher.Run returns.
type Result struct {
	// BatchID identifies the run.
	BatchID string
	// Succeeded holds the output paths of finished videos, sorted.
	Succeeded []string
	// Failed maps an audio path to the reason its video was not produced.
	Failed map[string]string
	// Cancelled holds the audio paths of jobs stopped by an interrupt, sorted.
	Cancelled []string
	// URLs maps an output path to its published URL.
	URLs map[string]string
	// Elapsed is the wall time of the whole batch.
	Elapsed time.Duration
}

// Total returns the number of jobs in the batch.
func (r *Result) Total() int {
	return len(r.Succeeded) + len(r.Failed) + len(r.Cancelled)
}

// OK reports whether every job succeeded.
func (r *Result) OK() bool {
	return len(r.Failed) == 0 && len(r.Cancelled) == 0
}

// aggregator collects job outcomes from concurrent workers.
type aggregator struct {
	mu        sync.Mutex
	succeeded []string
	failed    map[string]string
	cancelled []string
	urls      map[string]string
}

func newAggregator() *aggregator {
	return &aggregator{
		failed: make(map[string]string),
		urls:   make(map[string]string),
	}
}

func (a *aggregator) success(output, url string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.succeeded = append(a.succeeded, output)
	if url != "" {
		a.urls[output] = url
	}
}

func (a *aggregator) failure(audio, reason string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failed[audio] = reason
}

func (a *aggregator) cancel(audio string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelled = append(a.cancelled, audio)
}

func (a *aggregator) result(batchID string, elapsed time.Duration) *Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	succeeded := slices.Clone(a.succeeded)
	slices.Sort(succeeded)
	cancelled := slices.Clone(a.cancelled)
	slices.Sort(cancelled)

	failed := make(map[string]string, len(a.failed))
	for k, v := range a.failed {
		failed[k] = v
	}
	urls := make(map[string]string, len(a.urls))
	for k, v := range a.urls {
		urls[k] = v
	}

	return &Result{
		BatchID:   batchID,
		Succeeded: succeeded,
		Failed:    failed,
		Cancelled: cancelled,
		URLs:      urls,
		Elapsed:   elapsed,
	}
}
