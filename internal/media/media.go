// Package media describes the input files of a batch: which extensions count
// as audio or image, how they are collected from disk, and how an image's
// native dimensions are probed.
package media

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
)

// Static errors for input collection.
var (
	// ErrPathNotFound is returned when the given path does not exist.
	ErrPathNotFound = errors.New("path not found")
	// ErrUnsupportedFormat is returned when a single file has an extension
	// outside the allow-list of its category.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmptyCollection is returned when there is nothing to work with:
	// a directory scan matched no files, or a pairing input is empty.
	ErrEmptyCollection = errors.New("no matching files")
	// ErrUnreadableImage is returned when an image cannot be decoded.
	ErrUnreadableImage = errors.New("unreadable image")
)

// Category is the kind of media a file holds.
type Category int

const (
	// Audio is a song or any other sound track.
	Audio Category = iota
	// Image is a still picture shown for the whole track.
	Image
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case Audio:
		return "audio"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

// Supported extensions, lower-case and without the leading dot.
var (
	audioExtensions = []string{"mp3", "wav", "flac", "wma", "opus", "ogg", "aac", "m4a"}
	imageExtensions = []string{"jpg", "jpeg", "png", "bmp", "tif", "tiff"}
)

// Extensions returns a copy of the allow-list for c.
func Extensions(c Category) []string {
	switch c {
	case Audio:
		return slices.Clone(audioExtensions)
	case Image:
		return slices.Clone(imageExtensions)
	default:
		return nil
	}
}

// Supported reports whether path has an extension allowed for c.
// Matching ignores case.
func Supported(c Category, path string) bool {
	ext := extOf(path)
	if ext == "" {
		return false
	}
	switch c {
	case Audio:
		return slices.Contains(audioExtensions, ext)
	case Image:
		return slices.Contains(imageExtensions, ext)
	default:
		return false
	}
}

// File is a collected input file. It is never mutated after collection.
type File struct {
	// Path is the filesystem path as found by the collector.
	Path string
	// Category is the kind of media.
	Category Category
	// Ext is the lower-case extension without the dot.
	Ext string
}

// NewFile builds a File for path. It does not touch the filesystem.
func NewFile(path string, c Category) File {
	return File{Path: path, Category: c, Ext: extOf(path)}
}

// Name returns the base name of the file.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Stem returns the base name without its extension.
func (f File) Stem() string {
	name := filepath.Base(f.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Size is the pixel size of an image.
type Size struct {
	Width  int
	Height int
}

func extOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
