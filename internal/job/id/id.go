// Package id provides identifier generation for batches and their jobs.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generate creates a new unique batch ID.
// Format: batch-<timestamp>-<random>
// Example: batch-1701432000-a1b2c3d4
func Generate() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("batch-%d-%s", time.Now().Unix(), random)
}

// ForJob derives the ID of the job at index within a batch.
// Example: batch-1701432000-a1b2c3d4-007
func ForJob(batchID string, index int) string {
	return fmt.Sprintf("%s-%03d", batchID, index)
}
