package config

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	var out bytes.Buffer
	opts, err := ParseFlags([]string{"-a", "songs", "-i", "cover.png"}, &out)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, "songs", opts.AudioPath)
	assert.Equal(t, "cover.png", opts.ImagePath)
	assert.Equal(t, cwd, opts.OutputDir)
	assert.Equal(t, "webm", opts.Container)
	assert.Equal(t, "source", opts.Resolution)
	assert.False(t, opts.UseX265)
	assert.False(t, opts.Recursive)
	assert.False(t, opts.RandomOrder)
	assert.Empty(t, out.String())
}

func TestParseFlags_AllFlags(t *testing.T) {
	var out bytes.Buffer
	opts, err := ParseFlags([]string{
		"--audio", "music",
		"--image", "art",
		"-o", "videos",
		"-v", "MP4",
		"-x", "-r",
		"--random-image-order",
		"--resolution", "720P",
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "videos", opts.OutputDir)
	assert.Equal(t, "mp4", opts.Container)
	assert.Equal(t, "720p", opts.Resolution)
	assert.True(t, opts.UseX265)
	assert.True(t, opts.Recursive)
	assert.True(t, opts.RandomOrder)
}

func TestParseFlags_NoArgumentsPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseFlags(nil, &out)

	assert.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "--vid-format")
}

func TestParseFlags_Help(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseFlags([]string{"--help"}, &out)

	assert.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, out.String(), "--random-image-order")
}

func TestParseFlags_FormatsNeedsNoPaths(t *testing.T) {
	var out bytes.Buffer
	opts, err := ParseFlags([]string{"-f"}, &out)
	require.NoError(t, err)
	assert.True(t, opts.ListFormats)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing audio", []string{"-i", "x.png"}, ErrAudioPathRequired},
		{"missing image", []string{"-a", "x.mp3"}, ErrImagePathRequired},
		{"bad container", []string{"-a", "x.mp3", "-i", "x.png", "-v", "mkv"}, ErrInvalidOptions},
		{"bad resolution", []string{"-a", "x.mp3", "-i", "x.png", "--resolution", "4k"}, ErrInvalidOptions},
		{"unknown flag", []string{"-a", "x.mp3", "-i", "x.png", "--bogus"}, ErrInvalidOptions},
		{"stray argument", []string{"-a", "x.mp3", "-i", "x.png", "extra"}, ErrInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := ParseFlags(tt.args, &out)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	valid := Options{
		AudioPath:  "a",
		ImagePath:  "i",
		OutputDir:  "o",
		Container:  ".WebM",
		Resolution: "SOURCE",
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, "webm", valid.Container)
	assert.Equal(t, "source", valid.Resolution)

	noOutput := valid
	noOutput.OutputDir = ""
	err := noOutput.Validate()
	assert.ErrorIs(t, err, ErrInvalidOptions)
	assert.Contains(t, err.Error(), "OutputDir")
}
