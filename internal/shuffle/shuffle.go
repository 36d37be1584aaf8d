// Package shuffle implements an unbiased Fisher–Yates permutation with an
// injectable random source, so a fixed seed reproduces a fixed layout.
package shuffle

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Source picks a uniform integer in [0, n).
type Source interface {
	IntN(n int) int
}

// Shuffle returns a new slice holding a permutation of items. For i from the
// last index down to 1, element i swaps with a uniformly chosen index in
// [0, i]. items itself is left untouched.
func Shuffle[T any](src Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NewSeeded returns a deterministic source: equal seeds yield equal sequences.
func NewSeeded(seed uint64) Source {
	return mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandom returns a source seeded from crypto/rand for live play.
func NewRandom() Source {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return mrand.New(mrand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
}

// Factory builds a fresh source for each new session layout.
type Factory func() Source

// Seeded returns a Factory that always yields the same seeded source, used
// for the daily challenge and for tests.
func Seeded(seed uint64) Factory {
	return func() Source { return NewSeeded(seed) }
}
