package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Static errors for option validation.
var (
	// ErrAudioPathRequired is returned when no audio path was given.
	ErrAudioPathRequired = errors.New("config: an audio file or directory is required (-a)")
	// ErrImagePathRequired is returned when no image path was given.
	ErrImagePathRequired = errors.New("config: an image file or directory is required (-i)")
	// ErrInvalidOptions is returned when an option has a value outside its range.
	ErrInvalidOptions = errors.New("config: invalid options")
)

// Options is the validated request for one batch run.
type Options struct {
	// AudioPath is an audio file or a directory of audio files.
	AudioPath string `validate:"required"`
	// ImagePath is an image file or a directory of images.
	ImagePath string `validate:"required"`
	// OutputDir receives the videos. Defaults to the working directory.
	OutputDir string `validate:"required"`
	// Container is the output file format.
	Container string `validate:"required,oneof=webm mp4 avi flv wmv mov"`
	// UseX265 selects libx265 instead of libx264. Ignored for webm.
	UseX265 bool
	// Recursive descends into subdirectories of input directories.
	Recursive bool
	// RandomOrder draws images at random instead of cycling through them.
	RandomOrder bool
	// Resolution is a preset name or "source".
	Resolution string `validate:"required,oneof=source 360p 480p 720p 1080p"`
	// ListFormats prints the supported formats instead of running a batch.
	ListFormats bool
}

var validate = validator.New()

// Validate normalises case and checks the options. ListFormats needs no
// paths, so a listing request is always valid.
func (o *Options) Validate() error {
	o.Container = strings.ToLower(strings.TrimPrefix(o.Container, "."))
	o.Resolution = strings.ToLower(o.Resolution)

	if o.ListFormats {
		return nil
	}
	if o.AudioPath == "" {
		return ErrAudioPathRequired
	}
	if o.ImagePath == "" {
		return ErrImagePathRequired
	}

	if err := validate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s=%q fails %q", fe.Field(), fe.Value(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(msgs, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}
