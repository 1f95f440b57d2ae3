package dispatch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/maauso/musicvideo/internal/encode"
)

// Static errors for encoder runs.
var (
	// ErrEncodeFailure matches every *EncodeError.
	ErrEncodeFailure = errors.New("encode failed")
	// ErrEmptyOutput is returned when the encoder exited cleanly but left no
	// usable output file.
	ErrEmptyOutput = errors.New("encoder produced no output")
	// ErrEncoderNotFound is returned when the encoder binary cannot be run.
	ErrEncoderNotFound = errors.New("ffmpeg not found")
)

const (
	// stderrTailLines is how much encoder output a failure report keeps.
	stderrTailLines = 20
	// stderrKeepBytes bounds the encoder output held in memory per job.
	stderrKeepBytes = 64 << 10
	// defaultWaitDelay bounds how long Wait blocks on output pipes after the
	// process group was killed.
	defaultWaitDelay = 5 * time.Second
)

// Runner executes one encode job to completion.
type Runner interface {
	Run(ctx context.Context, j encode.Job) error
}

// EncodeError represents a failed encoder run, including the tail of its
// stderr output.
type EncodeError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("ffmpeg error: %v", e.Err)
	}
	return fmt.Sprintf("ffmpeg error: %v\n%s", e.Err, e.Stderr)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEncodeFailure.
func (e *EncodeError) Is(target error) bool {
	return target == ErrEncodeFailure
}

// FFmpegRunner runs jobs with the ffmpeg CLI. Each process is started in its
// own process group, and the whole group is killed when the job's context
// ends, so helper processes cannot outlive a cancelled batch.
type FFmpegRunner struct {
	// ffmpegPath is the path to the ffmpeg binary. Defaults to "ffmpeg".
	ffmpegPath string
	waitDelay  time.Duration
}

// NewFFmpegRunner creates a new FFmpegRunner.
// If ffmpegPath is empty, it defaults to "ffmpeg" (found via PATH).
func NewFFmpegRunner(ffmpegPath string) *FFmpegRunner {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &FFmpegRunner{ffmpegPath: ffmpegPath, waitDelay: defaultWaitDelay}
}

// Path returns the configured binary.
func (r *FFmpegRunner) Path() string {
	return r.ffmpegPath
}

// Check verifies the encoder can be started and returns its version line.
func (r *FFmpegRunner) Check(ctx context.Context) (string, error) {
	path, err := exec.LookPath(r.ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoderNotFound, err)
	}

	// #nosec G204 - path comes from configuration, not from input files
	out, err := exec.CommandContext(ctx, path, "-hide_banner", "-version").Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s -version: %w", ErrEncoderNotFound, path, err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// Run executes the job's argument list and returns an *EncodeError if the
// encoder fails. A cancelled context yields an error wrapping ctx.Err().
func (r *FFmpegRunner) Run(ctx context.Context, j encode.Job) error {
	// #nosec G204 - ffmpegPath is set by the application, args by the job builder
	cmd := exec.CommandContext(ctx, r.ffmpegPath, j.Args...)

	stderr := &tailBuffer{max: stderrKeepBytes}
	cmd.Stdout = io.Discard
	cmd.Stderr = stderr
	cmd.WaitDelay = r.waitDelay
	ownProcessGroup(cmd)

	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ffmpeg cancelled: %w", ctx.Err())
		}
		return &EncodeError{
			Args:   j.Args,
			Stderr: lastLines(stderr.String(), stderrTailLines),
			Err:    err,
		}
	}

	return nil
}

// tailBuffer is an io.Writer that keeps only the most recent max bytes.
type tailBuffer struct {
	buf bytes.Buffer
	max int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) > t.max {
		p = p[len(p)-t.max:]
	}
	if over := t.buf.Len() + len(p) - t.max; over > 0 {
		t.buf.Next(over)
	}
	t.buf.Write(p)
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}

// lastLines returns the last n non-empty lines of s.
func lastLines(s string, n int) string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 4096), stderrKeepBytes+1)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r ")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	return strings.Join(lines, "\n")
}
