package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Collect returns the files of category c found at path.
//
// A single file yields a one-element slice, or ErrUnsupportedFormat when its
// extension is not allowed. A directory yields every allowed file directly
// inside it (and inside its subdirectories when recursive is set), sorted by
// path. Hidden entries are skipped. The order is what pairing relies on, so
// it must stay lexicographic.
func Collect(path string, c Category, recursive bool) ([]File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if !Supported(c, path) {
			return nil, fmt.Errorf("%w: %s is not a supported %s file (supported: %s)",
				ErrUnsupportedFormat, path, c, strings.Join(Extensions(c), ", "))
		}
		return []File{NewFile(path, c)}, nil
	}

	var paths []string
	if recursive {
		paths, err = walkDir(path, c)
	} else {
		paths, err = readDir(path, c)
	}
	if err != nil {
		return nil, err
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s (supported: %s)",
			ErrEmptyCollection, c, path, strings.Join(Extensions(c), ", "))
	}

	sort.Strings(paths)

	files := make([]File, 0, len(paths))
	for _, p := range paths {
		files = append(files, NewFile(p, c))
	}
	return files, nil
}

// readDir lists the allowed files directly inside dir.
func readDir(dir string, c Category) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || isHidden(entry.Name()) {
			continue
		}
		if Supported(c, entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// walkDir lists the allowed files anywhere below root.
func walkDir(root string, c Category) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && Supported(c, p) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory %s: %w", root, err)
	}
	return paths, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
