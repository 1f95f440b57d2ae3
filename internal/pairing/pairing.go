// Package pairing assigns an image to every audio file of a batch.
package pairing

import (
	"fmt"
	"math/rand/v2"

	"github.com/maauso/musicvideo/internal/media"
)

// Pair is one audio file and the image shown while it plays.
type Pair struct {
	Audio media.File
	Image media.File
}

// Options configures the assignment.
type Options struct {
	// Random draws the image of every audio file independently and uniformly.
	// When false the images are cycled in order.
	Random bool
	// Rand is the source used in random mode. Nil uses the global generator.
	Rand *rand.Rand
}

// Assign returns one Pair per audio file, in the order of audio.
//
// In deterministic mode the image at index i is images[i%len(images)], so a
// short image list restarts from the first image. The function has no side
// effects: identical inputs give identical output unless opts.Random is set.
func Assign(audio, images []media.File, opts Options) ([]Pair, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: no audio files to pair", media.ErrEmptyCollection)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images to pair", media.ErrEmptyCollection)
	}

	pairs := make([]Pair, len(audio))
	for i, a := range audio {
		idx := i % len(images)
		if opts.Random {
			idx = pick(opts.Rand, len(images))
		}
		pairs[i] = Pair{Audio: a, Image: images[idx]}
	}
	return pairs, nil
}

func pick(r *rand.Rand, n int) int {
	if r == nil {
		return rand.IntN(n)
	}
	return r.IntN(n)
}
