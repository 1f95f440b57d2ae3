package encode

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxSuffix bounds the numeric disambiguator appended to clashing names.
const maxSuffix = 9999

// outputNamer hands out unique output paths for one batch. Paths are compared
// case-insensitively so the result is also unique on case-insensitive
// filesystems. Not safe for concurrent use; jobs are built sequentially.
type outputNamer struct {
	claimed map[string]struct{}
	// next is the first suffix not yet tried for a dir/stem/container key.
	next map[string]int
}

func newOutputNamer() *outputNamer {
	return &outputNamer{
		claimed: make(map[string]struct{}),
		next:    make(map[string]int),
	}
}

// claim returns dir/stem.ext, or dir/stem-N.ext with the smallest N >= 2
// not yet handed out.
func (n *outputNamer) claim(dir, stem string, c Container) (string, error) {
	candidate := filepath.Join(dir, stem+"."+string(c))
	if n.take(candidate) {
		return candidate, nil
	}

	// Every suffix below next[key] is already claimed, so probing resumes there.
	key := pathKey(candidate)
	start := max(n.next[key], 2)
	for i := start; i <= maxSuffix; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.%s", stem, i, c))
		if n.take(candidate) {
			n.next[key] = i + 1
			return candidate, nil
		}
	}
	n.next[key] = maxSuffix + 1
	return "", fmt.Errorf("%w: no free name for %q in %s", ErrOutputCollision, stem, dir)
}

func (n *outputNamer) take(path string) bool {
	key := pathKey(path)
	if _, ok := n.claimed[key]; ok {
		return false
	}
	n.claimed[key] = struct{}{}
	return true
}

func pathKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return strings.ToLower(filepath.Clean(path))
}

func samePath(a, b string) bool {
	return pathKey(a) == pathKey(b)
}
