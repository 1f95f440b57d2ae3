package media

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeImage saves a blank image of the given size; the format follows the extension.
func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, imaging.Save(image.NewNRGBA(image.Rect(0, 0, w, h)), path))
}

func TestProbeImage(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		w, h int
	}{
		{"cover.png", 101, 57},
		{"cover.jpg", 640, 480},
		{"cover.bmp", 33, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := filepath.Join(dir, tt.name)
			writeImage(t, p, tt.w, tt.h)

			size, err := ProbeImage(p)
			require.NoError(t, err)
			assert.Equal(t, Size{Width: tt.w, Height: tt.h}, size)
		})
	}
}

func TestProbeImage_Unreadable(t *testing.T) {
	p := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(p, []byte("not an image"), 0o600))

	_, err := ProbeImage(p)
	assert.ErrorIs(t, err, ErrUnreadableImage)

	_, err = ProbeImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, ErrUnreadableImage)
}

func TestProbeImages_ProbesEachPathOnce(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeImage(t, a, 10, 20)
	writeImage(t, b, 30, 40)

	files := []File{NewFile(a, Image), NewFile(b, Image), NewFile(a, Image)}
	sizes, err := ProbeImages(files)
	require.NoError(t, err)

	assert.Len(t, sizes, 2)
	assert.Equal(t, Size{Width: 10, Height: 20}, sizes[a])
	assert.Equal(t, Size{Width: 30, Height: 40}, sizes[b])
}
