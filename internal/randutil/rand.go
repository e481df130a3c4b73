// Package randutil derives reproducible random sources from int64 seeds.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Every deck
// and bot in the repository draws from a source built here so a single
// seed reproduces a whole session.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// NewOptional returns a seeded source when seed is non-nil and a
// time-seeded one otherwise. The seed actually used is returned so callers
// can log it for replay.
func NewOptional(seed *int64) (*rand.Rand, int64) {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return New(s), s
}

// Derive returns the seed for the n-th child stream of a parent seed, so
// independent tables in one run still replay exactly.
func Derive(parent int64, n int) int64 {
	return int64(splitmix(uint64(parent) + uint64(n+1)*goldenRatio64))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
