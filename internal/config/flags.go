package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// ErrHelp is returned by ParseFlags when usage was requested or no
// arguments were given. The usage text has already been written.
var ErrHelp = errors.New("config: help requested")

const usageHeader = `musicvideo turns audio tracks into still-image music videos.

Usage:
  musicvideo -a <audio file|dir> -i <image file|dir> [flags]

Flags:
`

// ParseFlags parses command-line arguments (without the program name) into
// validated Options. Usage and errors are written to out.
func ParseFlags(args []string, out io.Writer) (*Options, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	opts := &Options{}
	fs := pflag.NewFlagSet("musicvideo", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.SortFlags = false

	fs.StringVarP(&opts.AudioPath, "audio", "a", "", "audio file or directory of audio files")
	fs.StringVarP(&opts.ImagePath, "image", "i", "", "image file or directory of images")
	fs.StringVarP(&opts.OutputDir, "output", "o", cwd, "directory for the generated videos")
	fs.StringVarP(&opts.Container, "vid-format", "v", "webm", "output container: webm, mp4, avi, flv, wmv or mov")
	fs.BoolVarP(&opts.UseX265, "use-x265", "x", false, "encode with libx265 instead of libx264 (ignored for webm)")
	fs.BoolVarP(&opts.Recursive, "recursive", "r", false, "search input directories recursively")
	fs.BoolVar(&opts.RandomOrder, "random-image-order", false, "pick a random image for every track")
	fs.StringVar(&opts.Resolution, "resolution", "source", "output size: source, 360p, 480p, 720p or 1080p")
	fs.BoolVarP(&opts.ListFormats, "formats", "f", false, "list supported formats and exit")

	fs.Usage = func() {
		_, _ = fmt.Fprint(out, usageHeader)
		_, _ = fmt.Fprint(out, fs.FlagUsages())
	}

	if len(args) == 0 {
		fs.Usage()
		return nil, ErrHelp
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrInvalidOptions, fs.Args())
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}
