// Package report renders batch outcomes and the format listing for the terminal.
package report

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/maauso/musicvideo/internal/dispatch"
	"github.com/maauso/musicvideo/internal/encode"
	"github.com/maauso/musicvideo/internal/job"
	"github.com/maauso/musicvideo/internal/media"
)

const (
	colorPrimary = "#7D56F4"
	colorSuccess = "#04B575"
	colorError   = "#FF0000"
	colorInfo    = "#626262"
	colorBorder  = "#874BFD"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPrimary))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colorSuccess))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorError))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorInfo))

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Status labels used in the breakdown.
const (
	statusOK        = "ok"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

type row struct {
	status   string
	file     string
	duration string
	detail   string
}

// Render returns the per-file breakdown of a batch followed by the full
// failure reasons and a one-line summary. The breakdown is built from the
// batch's job records when given, otherwise from res alone.
func Render(res *dispatch.Result, jobs []*job.Job) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Batch " + res.BatchID))
	b.WriteString("\n")

	rows := fromRecords(jobs)
	if len(rows) == 0 {
		rows = breakdown(res)
	}
	if len(rows) == 0 {
		b.WriteString(infoStyle.Render("No jobs were run."))
		b.WriteString("\n")
		return b.String()
	}

	t := newTable("Status", "File", "Time", "Detail")
	for _, r := range rows {
		t.Row(statusLabel(r.status), r.file, r.duration, r.detail)
	}
	b.WriteString(t.String())
	b.WriteString("\n")

	if len(res.Failed) > 0 {
		b.WriteString("\n")
		b.WriteString(failStyle.Render("Failures"))
		b.WriteString("\n")
		for _, audio := range sortedKeys(res.Failed) {
			fmt.Fprintf(&b, "%s:\n%s\n", audio, indent(res.Failed[audio]))
		}
	}

	b.WriteString("\n")
	b.WriteString(Summary(res))
	b.WriteString("\n")
	return b.String()
}

// Summary returns a single line with the counts and the elapsed time.
func Summary(res *dispatch.Result) string {
	return fmt.Sprintf("%d of %d videos created, %d failed, %d cancelled in %s",
		len(res.Succeeded), res.Total(), len(res.Failed), len(res.Cancelled),
		res.Elapsed.Round(10*time.Millisecond))
}

// fromRecords renders one row per job record, in batch order.
func fromRecords(jobs []*job.Job) []row {
	rows := make([]row, 0, len(jobs))
	for _, j := range jobs {
		status := j.GetStatus()
		r := row{status: string(status), file: filepath.Base(j.AudioPath)}
		if j.IsTerminal() && status != job.StatusCancelled {
			r.duration = j.Duration().Round(10 * time.Millisecond).String()
		}
		switch status {
		case job.StatusCompleted:
			r.detail = j.OutputPath
			if j.VideoURL != "" {
				r.detail = j.VideoURL
			}
		case job.StatusCancelled:
			r.detail = "interrupted"
		default:
			r.detail, _, _ = strings.Cut(j.Error, "\n")
		}
		rows = append(rows, r)
	}
	return rows
}

func breakdown(res *dispatch.Result) []row {
	rows := make([]row, 0, res.Total())
	for _, out := range res.Succeeded {
		detail := out
		if url, ok := res.URLs[out]; ok {
			detail = url
		}
		rows = append(rows, row{status: statusOK, file: filepath.Base(out), detail: detail})
	}
	for _, audio := range sortedKeys(res.Failed) {
		reason, _, _ := strings.Cut(res.Failed[audio], "\n")
		rows = append(rows, row{status: statusFailed, file: filepath.Base(audio), detail: reason})
	}
	for _, audio := range res.Cancelled {
		rows = append(rows, row{status: statusCancelled, file: filepath.Base(audio), detail: "interrupted"})
	}
	return rows
}

func statusLabel(status string) string {
	switch status {
	case statusOK, string(job.StatusCompleted):
		return okStyle.Render(status)
	case statusFailed, string(job.StatusFailed), string(job.StatusTimedOut):
		return failStyle.Render(status)
	default:
		return infoStyle.Render(status)
	}
}

// Formats lists the accepted input extensions, output containers and
// resolution presets.
func Formats() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Input formats"))
	b.WriteString("\n")
	in := newTable("Kind", "Extensions")
	in.Row(media.Audio.String(), strings.Join(media.Extensions(media.Audio), ", "))
	in.Row(media.Image.String(), strings.Join(media.Extensions(media.Image), ", "))
	b.WriteString(in.String())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Output containers"))
	b.WriteString("\n")
	out := newTable("Container", "Video", "Video (-x)", "Audio")
	for _, c := range encode.Containers() {
		out.Row(string(c),
			string(encode.VideoCodec(c, false)),
			string(encode.VideoCodec(c, true)),
			encode.AudioCodec(c),
		)
	}
	b.WriteString(out.String())
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Resolutions"))
	b.WriteString("\n")
	res := newTable("Name", "Size")
	res.Row(encode.Source.Name, "image size, padded to even")
	for _, r := range encode.Resolutions() {
		res.Row(r.Name, fmt.Sprintf("%dx%d", r.Width, r.Height))
	}
	b.WriteString(res.String())
	b.WriteString("\n")
	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(colorBorder))).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers(headers...)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
