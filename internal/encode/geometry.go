package encode

import (
	"fmt"
	"strings"

	"github.com/maauso/musicvideo/internal/media"
)

// Geometry describes how the source image is placed on the output frame.
// For every geometry ScaledWidth+PadLeft+PadRight == Width and
// ScaledHeight+PadTop+PadBottom == Height.
type Geometry struct {
	SourceWidth  int
	SourceHeight int

	ScaledWidth  int
	ScaledHeight int

	// Width and Height are the output frame size. Both are even.
	Width  int
	Height int

	PadLeft   int
	PadRight  int
	PadTop    int
	PadBottom int
}

// Fit computes the geometry of src on a frame of resolution r.
//
// For a preset, the image is scaled by min(tw/sw, th/sh), the result is
// rounded down to even numbers and the rest of the frame is padded black,
// split evenly with the odd pixel on the right/bottom. Upscaling happens when
// the preset is larger than the image.
//
// For Source the image keeps its size. Odd dimensions are padded by one pixel
// on the right and/or bottom; the image is never cropped.
func Fit(src media.Size, r Resolution) Geometry {
	g := Geometry{SourceWidth: src.Width, SourceHeight: src.Height}

	if r.IsSource() {
		g.ScaledWidth, g.ScaledHeight = src.Width, src.Height
		g.Width, g.Height = src.Width+src.Width%2, src.Height+src.Height%2
		g.PadRight, g.PadBottom = src.Width%2, src.Height%2
		return g
	}

	tw, th := r.Width, r.Height
	sw, sh := src.Width, src.Height

	var w, h int
	if tw*sh <= th*sw {
		// Width is the limiting side.
		w, h = tw, sh*tw/sw
	} else {
		w, h = sw*th/sh, th
	}
	w, h = max(evenFloor(w), 2), max(evenFloor(h), 2)

	g.ScaledWidth, g.ScaledHeight = w, h
	g.Width, g.Height = tw, th
	g.PadLeft = (tw - w) / 2
	g.PadRight = tw - w - g.PadLeft
	g.PadTop = (th - h) / 2
	g.PadBottom = th - h - g.PadTop
	return g
}

// Scaled reports whether the image is resized.
func (g Geometry) Scaled() bool {
	return g.ScaledWidth != g.SourceWidth || g.ScaledHeight != g.SourceHeight
}

// Padded reports whether any black border is added.
func (g Geometry) Padded() bool {
	return g.PadLeft+g.PadRight+g.PadTop+g.PadBottom > 0
}

// Filter renders the geometry as an ffmpeg filter graph, or "" when the image
// is used as is.
func (g Geometry) Filter() string {
	var parts []string
	if g.Scaled() {
		parts = append(parts, fmt.Sprintf("scale=%d:%d", g.ScaledWidth, g.ScaledHeight))
	}
	if g.Padded() {
		parts = append(parts, fmt.Sprintf("pad=%d:%d:%d:%d:black", g.Width, g.Height, g.PadLeft, g.PadTop))
	}
	if g.Scaled() {
		parts = append(parts, "setsar=1")
	}
	return strings.Join(parts, ",")
}

func evenFloor(n int) int {
	return n - n%2
}
