package mutate

import "bytes"

// defaultBoundaries are buffer-size boundaries that commonly trip up
// fixed-size stack/heap buffers. The overflow length distribution is
// parameterized (§9 open question: the source hard-codes an
// undocumented table) so callers can widen or narrow it per target.
var defaultBoundaries = []int{
	8, 16, 32, 64, 128, 256, 512,
	1024, 2048, 4096, 8192, 16384, 32768, 65536,
}

// Overflow replaces exactly one randomly chosen slot with a repeated
// ASCII character pattern whose length is drawn from around a table of
// buffer-size boundaries, plus small noise.
type Overflow struct {
	Boundaries []int
	Char       byte
}

// NewOverflow builds the overflow mutator with the default boundary
// table and the canonical 'A' fill character.
func NewOverflow() *Overflow {
	return &Overflow{Boundaries: defaultBoundaries, Char: 'A'}
}

// Mutate returns a copy of slots with one randomly chosen entry
// replaced by a long byte pattern. The slot count is preserved.
func (o *Overflow) Mutate(rng *Rand, slots [][]byte) [][]byte {
	idx := rng.IntN(len(slots))

	out := make([][]byte, len(slots))
	copy(out, slots)
	out[idx] = bytes.Repeat([]byte{o.Char}, o.length(rng))

	return out
}

// length picks a boundary from the table and perturbs it by -2..+2 so
// fuzzing explores both sides of common off-by-one conditions.
func (o *Overflow) length(rng *Rand) int {
	base := o.Boundaries[rng.IntN(len(o.Boundaries))]
	noise := rng.IntN(5) - 2
	l := base + noise
	if l < 0 {
		l = 0
	}
	return l
}
