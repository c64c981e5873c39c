// Package mutate implements the two built-in, grammar-blind byte
// mutators: command injection and buffer overflow. Both operate on an
// ordered list of opaque parameter slots and preserve the slot count.
package mutate

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Rand is the explicit RNG every mutator draws from, so that fuzzing
// runs (and their tests) are reproducible given a seed instead of
// relying on an implicit global generator.
type Rand struct {
	r *mrand.Rand
}

// NewRand builds a reproducible Rand from two seed words.
func NewRand(seed1, seed2 uint64) *Rand {
	return &Rand{r: mrand.New(mrand.NewPCG(seed1, seed2))}
}

// NewEntropyRand seeds a Rand from the OS CSPRNG, for normal fuzzing
// runs where reproducibility isn't required.
func NewEntropyRand() *Rand {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing means the OS entropy source is broken;
		// fall back to a fixed seed rather than panicking mid-run.
		return NewRand(1, 1)
	}
	return NewRand(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

func (r *Rand) IntN(n int) int {
	return r.r.IntN(n)
}

func (r *Rand) Int64N(n int64) int64 {
	return r.r.Int64N(n)
}

func (r *Rand) Uint64N(n uint64) uint64 {
	return r.r.Uint64N(n)
}

func (r *Rand) Bool() bool {
	return r.r.IntN(2) == 0
}

func (r *Rand) Choice(n int) int {
	return r.IntN(n)
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (r *Rand) Float64() float64 {
	return r.r.Float64()
}
