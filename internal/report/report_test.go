package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maauso/musicvideo/internal/dispatch"
	"github.com/maauso/musicvideo/internal/job"
)

func TestRender_Breakdown(t *testing.T) {
	res := &dispatch.Result{
		BatchID:   "batch-1700000000-abcd1234",
		Succeeded: []string{"/out/a.webm", "/out/b.webm"},
		Failed: map[string]string{
			"/music/c.mp3": "ffmpeg error: exit status 1\nc.mp3: Invalid data found",
		},
		Cancelled: []string{"/music/d.mp3"},
		URLs:      map[string]string{"/out/b.webm": "https://bucket.s3.eu-west-1.amazonaws.com/b.webm"},
		Elapsed:   1500 * time.Millisecond,
	}

	out := Render(res, nil)

	assert.Contains(t, out, "batch-1700000000-abcd1234")
	assert.Contains(t, out, "a.webm")
	assert.Contains(t, out, "/out/a.webm")
	assert.Contains(t, out, "https://bucket.s3.eu-west-1.amazonaws.com/b.webm")
	assert.Contains(t, out, "c.mp3")
	assert.Contains(t, out, "d.mp3")
	assert.Contains(t, out, "interrupted")
	assert.Contains(t, out, "Failures")
	assert.Contains(t, out, "  c.mp3: Invalid data found")
	assert.Contains(t, out, "2 of 4 videos created, 1 failed, 1 cancelled in 1.5s")
}

// record builds a finished job record that ran for d.
func record(t *testing.T, index int, audio string, d time.Duration, finish func(*job.Job) error) *job.Job {
	t.Helper()
	rec := job.New("b", index)
	rec.AudioPath = audio
	if finish != nil {
		assert.NoError(t, rec.Start())
		assert.NoError(t, finish(rec))
		rec.StartedAt = rec.CompletedAt.Add(-d)
	}
	return rec
}

func TestRender_FromJobRecords(t *testing.T) {
	done := record(t, 0, "/music/a.mp3", 2500*time.Millisecond, (*job.Job).Complete)
	done.SetOutput("/out/a.webm", "")
	slow := record(t, 1, "/music/b.mp3", 3*time.Second, func(j *job.Job) error {
		return j.Timeout("timed out after 3s")
	})
	broken := record(t, 2, "/music/c.mp3", 100*time.Millisecond, func(j *job.Job) error {
		return j.Fail("ffmpeg error: exit status 1\nc.mp3: Invalid data found")
	})
	queued := record(t, 3, "/music/d.mp3", 0, nil)
	assert.NoError(t, queued.Cancel())

	res := &dispatch.Result{
		BatchID:   "b",
		Succeeded: []string{"/out/a.webm"},
		Failed: map[string]string{
			"/music/b.mp3": "timed out after 3s",
			"/music/c.mp3": "ffmpeg error: exit status 1\nc.mp3: Invalid data found",
		},
		Cancelled: []string{"/music/d.mp3"},
		Elapsed:   4 * time.Second,
	}

	out := Render(res, []*job.Job{done, slow, broken, queued})

	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "TIMED_OUT")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "CANCELLED")
	assert.Contains(t, out, "2.5s")
	assert.Contains(t, out, "3s")
	assert.Contains(t, out, "/out/a.webm")
	assert.Contains(t, out, "ffmpeg error: exit status 1")
	assert.Contains(t, out, "  c.mp3: Invalid data found")
	assert.Contains(t, out, "1 of 4 videos created, 2 failed, 1 cancelled in 4s")
}

func TestRender_AllSucceeded(t *testing.T) {
	res := &dispatch.Result{
		BatchID:   "b",
		Succeeded: []string{"/out/a.mp4"},
		Failed:    map[string]string{},
		URLs:      map[string]string{},
	}

	out := Render(res, nil)
	assert.NotContains(t, out, "Failures")
	assert.Contains(t, out, "1 of 1 videos created, 0 failed, 0 cancelled")
}

func TestRender_Empty(t *testing.T) {
	out := Render(&dispatch.Result{BatchID: "b"}, nil)
	assert.Contains(t, out, "No jobs were run.")
}

func TestFormats(t *testing.T) {
	out := Formats()

	for _, want := range []string{
		"mp3", "flac", "m4a", "jpeg", "tiff",
		"webm", "libvpx-vp9", "libvorbis",
		"mp4", "libx264", "libx265", "aac",
		"wmv", "wmav2", "avi", "libmp3lame",
		"source", "1080p", "1920x1080", "360p", "640x360",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, "Output containers"))
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "  a\n  b", indent("a\nb\n"))
}
