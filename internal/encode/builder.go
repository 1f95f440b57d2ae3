package encode

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/maauso/musicvideo/internal/media"
	"github.com/maauso/musicvideo/internal/pairing"
)

// Frame rate of the looped still image. The picture never changes, so a low
// rate keeps the encode fast and the file small.
const stillFrameRate = "2"

// Job is a fully specified encode: one audio file, one image, one output
// path and the arguments that produce it.
type Job struct {
	// Index is the position of the job in its batch.
	Index int

	Audio media.File
	Image media.File

	OutputPath string
	Container  Container
	VideoCodec Codec
	AudioCodec string
	Resolution Resolution
	Geometry   Geometry
	// Filter is the rendered video filter graph, empty when none is needed.
	Filter string

	// Args is the encoder argument list without the binary name.
	Args []string
}

// Options configures the builder for a whole batch.
type Options struct {
	OutputDir  string
	Container  Container
	UseX265    bool
	Resolution Resolution
}

// Builder builds the jobs of one batch. Output paths are unique across every
// job built by the same Builder.
type Builder struct {
	opts  Options
	names *outputNamer
	next  int
}

// NewBuilder creates a Builder for one batch.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, names: newOutputNamer()}
}

// Build creates the job for p. src is the probed size of p.Image.
func (b *Builder) Build(p pairing.Pair, src media.Size) (Job, error) {
	if src.Width <= 0 || src.Height <= 0 {
		return Job{}, fmt.Errorf("%w: %s has no usable size", media.ErrUnreadableImage, p.Image.Path)
	}

	out, err := b.names.claim(b.opts.OutputDir, p.Audio.Stem(), b.opts.Container)
	if err != nil {
		return Job{}, err
	}
	if samePath(out, p.Audio.Path) || samePath(out, p.Image.Path) {
		return Job{}, fmt.Errorf("%w: %s would overwrite an input", ErrOutputCollision, out)
	}

	j := Job{
		Index:      b.next,
		Audio:      p.Audio,
		Image:      p.Image,
		OutputPath: out,
		Container:  b.opts.Container,
		VideoCodec: VideoCodec(b.opts.Container, b.opts.UseX265),
		AudioCodec: AudioCodec(b.opts.Container),
		Resolution: b.opts.Resolution,
		Geometry:   Fit(src, b.opts.Resolution),
	}
	j.Filter = j.Geometry.Filter()
	j.Args = buildArgs(j)
	b.next++
	return j, nil
}

// BuildAll builds one job per pair. sizes maps image paths to their probed
// size and must cover every image in pairs.
func BuildAll(pairs []pairing.Pair, sizes map[string]media.Size, opts Options) ([]Job, error) {
	b := NewBuilder(opts)
	jobs := make([]Job, 0, len(pairs))
	for _, p := range pairs {
		size, ok := sizes[p.Image.Path]
		if !ok {
			return nil, fmt.Errorf("%w: %s was not probed", media.ErrUnreadableImage, p.Image.Path)
		}
		j, err := b.Build(p, size)
		if err != nil {
			return nil, fmt.Errorf("build job for %s: %w", p.Audio.Name(), err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func buildArgs(j Job) []string {
	image := ffmpeg.Input(j.Image.Path, ffmpeg.KwArgs{"loop": "1", "framerate": stillFrameRate})
	audio := ffmpeg.Input(j.Audio.Path)

	kw := ffmpeg.KwArgs{
		"c:v":                  string(j.VideoCodec),
		"c:a":                  j.AudioCodec,
		"pix_fmt":              "yuv420p",
		"shortest":             "",
		"fflags":               "+shortest",
		"max_interleave_delta": "100M",
		"f":                    j.Container.Muxer(),
	}
	if j.Filter != "" {
		kw["vf"] = j.Filter
	}
	switch j.VideoCodec {
	case X264:
		kw["tune"] = "stillimage"
	case X265:
		if j.Container == MP4 || j.Container == MOV {
			kw["tag:v"] = "hvc1"
		}
	case VP9:
		kw["b:v"] = "0"
		kw["crf"] = "32"
	}

	args := ffmpeg.Output([]*ffmpeg.Stream{image.Video(), audio.Audio()}, j.OutputPath, kw).
		OverWriteOutput().
		GetArgs()

	return append([]string{"-hide_banner", "-nostdin", "-loglevel", "error"}, args...)
}
