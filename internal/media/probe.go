package media

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// ProbeImage decodes the image at path and returns its native pixel size.
// The size is the one the encoder sees; EXIF orientation is not applied.
func ProbeImage(path string) (Size, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return Size{}, fmt.Errorf("%w: %s: %w", ErrUnreadableImage, path, err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Size{}, fmt.Errorf("%w: %s has no pixels", ErrUnreadableImage, path)
	}
	return Size{Width: b.Dx(), Height: b.Dy()}, nil
}

// ProbeImages probes every distinct image path once.
func ProbeImages(files []File) (map[string]Size, error) {
	sizes := make(map[string]Size, len(files))
	for _, f := range files {
		if _, ok := sizes[f.Path]; ok {
			continue
		}
		size, err := ProbeImage(f.Path)
		if err != nil {
			return nil, err
		}
		sizes[f.Path] = size
	}
	return sizes, nil
}
