package encode

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maauso/musicvideo/internal/media"
	"github.com/maauso/musicvideo/internal/pairing"
)

func pairOf(audio, image string) pairing.Pair {
	return pairing.Pair{
		Audio: media.NewFile(audio, media.Audio),
		Image: media.NewFile(image, media.Image),
	}
}

// flagValue returns the argument following the first occurrence of flag.
func flagValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %s not found in %v", flag, args)
	return ""
}

func TestVideoCodec(t *testing.T) {
	tests := []struct {
		container Container
		x265      bool
		want      Codec
	}{
		{WebM, false, VP9},
		{WebM, true, VP9},
		{MP4, false, X264},
		{MP4, true, X265},
		{MOV, true, X265},
		{AVI, false, X264},
		{WMV, true, X265},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s x265=%v", tt.container, tt.x265), func(t *testing.T) {
			assert.Equal(t, tt.want, VideoCodec(tt.container, tt.x265))
		})
	}
}

func TestAudioCodec(t *testing.T) {
	assert.Equal(t, "libvorbis", AudioCodec(WebM))
	assert.Equal(t, "aac", AudioCodec(MP4))
	assert.Equal(t, "aac", AudioCodec(MOV))
	assert.Equal(t, "aac", AudioCodec(FLV))
	assert.Equal(t, "libmp3lame", AudioCodec(AVI))
	assert.Equal(t, "wmav2", AudioCodec(WMV))
}

func TestParseContainer(t *testing.T) {
	c, err := ParseContainer("MP4")
	require.NoError(t, err)
	assert.Equal(t, MP4, c)

	c, err = ParseContainer(".webm")
	require.NoError(t, err)
	assert.Equal(t, WebM, c)

	_, err = ParseContainer("mkv")
	assert.ErrorIs(t, err, ErrUnknownContainer)

	assert.Equal(t, "asf", WMV.Muxer())
	assert.Equal(t, "mov", MOV.Muxer())
}

func TestParseResolution(t *testing.T) {
	r, err := ParseResolution("")
	require.NoError(t, err)
	assert.True(t, r.IsSource())

	r, err = ParseResolution("Source")
	require.NoError(t, err)
	assert.True(t, r.IsSource())

	r, err = ParseResolution("480p")
	require.NoError(t, err)
	assert.Equal(t, Resolution{Name: "480p", Width: 854, Height: 480}, r)

	_, err = ParseResolution("4k")
	assert.ErrorIs(t, err, ErrUnknownResolution)
}

func TestBuild_WebMIgnoresX265(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: WebM, UseX265: true, Resolution: Source})

	j, err := b.Build(pairOf("/in/song.mp3", "/in/cover.png"), media.Size{Width: 800, Height: 600})
	require.NoError(t, err)

	assert.Equal(t, VP9, j.VideoCodec)
	assert.Equal(t, "libvpx-vp9", flagValue(t, j.Args, "-c:v"))
	assert.Equal(t, "libvorbis", flagValue(t, j.Args, "-c:a"))
	assert.Equal(t, "webm", flagValue(t, j.Args, "-f"))
	assert.NotContains(t, j.Args, "libx265")
}

func TestBuild_Args(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: MP4, Resolution: Source})

	j, err := b.Build(pairOf("/in/song.flac", "/in/cover.jpg"), media.Size{Width: 1921, Height: 1080})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/out", "song.mp4"), j.OutputPath)
	assert.Equal(t, "-hide_banner", j.Args[0])
	assert.Contains(t, j.Args, "-nostdin")
	assert.Contains(t, j.Args, "/in/song.flac")
	assert.Contains(t, j.Args, "/in/cover.jpg")
	assert.Contains(t, j.Args, j.OutputPath)
	assert.Contains(t, j.Args, "-y")
	assert.Contains(t, j.Args, "-shortest")

	assert.Equal(t, "1", flagValue(t, j.Args, "-loop"))
	assert.Equal(t, "libx264", flagValue(t, j.Args, "-c:v"))
	assert.Equal(t, "aac", flagValue(t, j.Args, "-c:a"))
	assert.Equal(t, "yuv420p", flagValue(t, j.Args, "-pix_fmt"))
	assert.Equal(t, "stillimage", flagValue(t, j.Args, "-tune"))
	assert.Equal(t, "+shortest", flagValue(t, j.Args, "-fflags"))
	assert.Equal(t, "pad=1922:1080:0:0:black", flagValue(t, j.Args, "-vf"))

	// The image input comes before the audio input.
	var inputs []string
	for i, a := range j.Args {
		if a == "-i" {
			inputs = append(inputs, j.Args[i+1])
		}
	}
	assert.Equal(t, []string{"/in/cover.jpg", "/in/song.flac"}, inputs)
}

func TestBuild_EvenSourceHasNoFilter(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: MP4, Resolution: Source})

	j, err := b.Build(pairOf("/in/a.mp3", "/in/c.png"), media.Size{Width: 1280, Height: 720})
	require.NoError(t, err)
	assert.NotContains(t, j.Args, "-vf")
}

func TestBuild_X265TagsHEVCInMP4(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: MP4, UseX265: true, Resolution: Source})

	j, err := b.Build(pairOf("/in/a.mp3", "/in/c.png"), media.Size{Width: 1280, Height: 720})
	require.NoError(t, err)
	assert.Equal(t, "libx265", flagValue(t, j.Args, "-c:v"))
	assert.Equal(t, "hvc1", flagValue(t, j.Args, "-tag:v"))
	assert.NotContains(t, j.Args, "-tune")
}

func TestBuild_Collisions(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: MP4, Resolution: Source})
	size := media.Size{Width: 640, Height: 480}

	var outputs []string
	for _, audio := range []string{"/in/a/track.mp3", "/in/b/track.wav", "/in/c/TRACK.flac", "/in/other.mp3"} {
		j, err := b.Build(pairOf(audio, "/in/img.png"), size)
		require.NoError(t, err)
		outputs = append(outputs, j.OutputPath)
	}

	assert.Equal(t, []string{
		filepath.Join("/out", "track.mp4"),
		filepath.Join("/out", "track-2.mp4"),
		filepath.Join("/out", "TRACK-3.mp4"),
		filepath.Join("/out", "other.mp4"),
	}, outputs)
}

func TestBuild_SuffixClashesWithRealName(t *testing.T) {
	b := NewBuilder(Options{OutputDir: "/out", Container: MP4, Resolution: Source})
	size := media.Size{Width: 640, Height: 480}

	first, err := b.Build(pairOf("/in/x/song-2.mp3", "/in/img.png"), size)
	require.NoError(t, err)
	second, err := b.Build(pairOf("/in/song.mp3", "/in/img.png"), size)
	require.NoError(t, err)
	third, err := b.Build(pairOf("/in/y/song.mp3", "/in/img.png"), size)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/out", "song-2.mp4"), first.OutputPath)
	assert.Equal(t, filepath.Join("/out", "song.mp4"), second.OutputPath)
	assert.Equal(t, filepath.Join("/out", "song-3.mp4"), third.OutputPath)
}

func TestOutputNamer_Exhausted(t *testing.T) {
	n := newOutputNamer()
	for i := 1; i <= maxSuffix; i++ {
		_, err := n.claim("/out", "x", MP4)
		require.NoError(t, err)
	}

	_, err := n.claim("/out", "x", MP4)
	assert.True(t, errors.Is(err, ErrOutputCollision))
}

func TestOutputNamer_ResumesAfterLastSuffix(t *testing.T) {
	n := newOutputNamer()
	for range 100 {
		_, err := n.claim("/out", "x", MP4)
		require.NoError(t, err)
	}
	assert.Equal(t, 101, n.next[pathKey(filepath.Join("/out", "x.mp4"))])

	// A real file name can take a suffix the namer has not reached yet.
	taken, err := n.claim("/out", "x-101", MP4)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "x-101.mp4"), taken)

	next, err := n.claim("/out", "X", MP4)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/out", "X-102.mp4"), next)
}

func TestBuildAll(t *testing.T) {
	pairs := []pairing.Pair{
		pairOf("/in/1.mp3", "/in/a.png"),
		pairOf("/in/2.mp3", "/in/b.png"),
		pairOf("/in/3.mp3", "/in/a.png"),
	}
	sizes := map[string]media.Size{
		"/in/a.png": {Width: 1000, Height: 1000},
		"/in/b.png": {Width: 1920, Height: 1080},
	}

	jobs, err := BuildAll(pairs, sizes, Options{OutputDir: "/out", Container: MP4, Resolution: Resolution{Name: "720p", Width: 1280, Height: 720}})
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	for i, j := range jobs {
		assert.Equal(t, i, j.Index)
		assert.Equal(t, pairs[i].Audio, j.Audio)
		assert.Equal(t, 1280, j.Geometry.Width)
		assert.Equal(t, 720, j.Geometry.Height)
	}
	assert.Equal(t, "scale=1280:720,setsar=1", jobs[1].Geometry.Filter())
}

func TestBuildAll_MissingSize(t *testing.T) {
	_, err := BuildAll([]pairing.Pair{pairOf("/in/1.mp3", "/in/a.png")}, nil, Options{OutputDir: "/out", Container: MP4})
	assert.ErrorIs(t, err, media.ErrUnreadableImage)
}
