// Package encode turns an audio/image pair into a ready-to-run encoder job:
// codec choice, scale and padding geometry, output naming and the full
// ffmpeg argument list.
package encode

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for job building.
var (
	// ErrUnknownContainer is returned for a container outside the supported set.
	ErrUnknownContainer = errors.New("unknown container format")
	// ErrUnknownResolution is returned for a resolution name without a preset.
	ErrUnknownResolution = errors.New("unknown resolution")
	// ErrOutputCollision is returned when no unique output name can be found.
	ErrOutputCollision = errors.New("output path collision")
)

// Container is the output file format.
type Container string

// Supported containers.
const (
	WebM Container = "webm"
	MP4  Container = "mp4"
	AVI  Container = "avi"
	FLV  Container = "flv"
	WMV  Container = "wmv"
	MOV  Container = "mov"
)

var containers = []Container{MP4, AVI, FLV, WebM, WMV, MOV}

// Containers returns the supported containers.
func Containers() []Container {
	out := make([]Container, len(containers))
	copy(out, containers)
	return out
}

// ParseContainer converts a user-supplied name into a Container.
func ParseContainer(s string) (Container, error) {
	c := Container(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range containers {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContainer, s)
}

// Muxer returns the ffmpeg muxer name for the container.
func (c Container) Muxer() string {
	if c == WMV {
		return "asf"
	}
	return string(c)
}

// Codec is an ffmpeg video encoder.
type Codec string

// Video encoders the builder chooses from.
const (
	VP9  Codec = "libvpx-vp9"
	X264 Codec = "libx264"
	X265 Codec = "libx265"
)

// VideoCodec picks the video encoder. WebM only carries VP8/VP9/AV1, so it
// always gets VP9 whatever useX265 says.
func VideoCodec(c Container, useX265 bool) Codec {
	switch {
	case c == WebM:
		return VP9
	case useX265:
		return X265
	default:
		return X264
	}
}

// AudioCodec picks the audio encoder the container can hold for any input.
func AudioCodec(c Container) string {
	switch c {
	case WebM:
		return "libvorbis"
	case AVI:
		return "libmp3lame"
	case WMV:
		return "wmav2"
	default:
		return "aac"
	}
}

// Resolution is a named output size. The zero size means "source": keep the
// image's own dimensions.
type Resolution struct {
	Name   string
	Width  int
	Height int
}

// Source keeps the image's native size.
var Source = Resolution{Name: "source"}

// Presets use the sizes YouTube lists for each quality step.
var presets = []Resolution{
	{Name: "360p", Width: 640, Height: 360},
	{Name: "480p", Width: 854, Height: 480},
	{Name: "720p", Width: 1280, Height: 720},
	{Name: "1080p", Width: 1920, Height: 1080},
}

// Resolutions returns the named presets.
func Resolutions() []Resolution {
	out := make([]Resolution, len(presets))
	copy(out, presets)
	return out
}

// ParseResolution resolves a preset name. An empty name or "source" yields Source.
func ParseResolution(name string) (Resolution, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == Source.Name {
		return Source, nil
	}
	for _, p := range presets {
		if p.Name == n {
			return p, nil
		}
	}
	return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownResolution, name)
}

// IsSource reports whether r keeps the native image size.
func (r Resolution) IsSource() bool {
	return r.Width == 0 && r.Height == 0
}

// String returns the preset name.
func (r Resolution) String() string {
	return r.Name
}
