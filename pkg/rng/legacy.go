// Package rng reproduces the 48-bit linear congruential generator used by
// java.util.Random and by Minecraft's legacy world generation.
package rng

const (
	multiplier = 0x5DEECE66D
	increment  = 0xB
	mask       = 1<<48 - 1
)

// Legacy is a seeded LCG with the exact draw semantics of java.util.Random.
// A Legacy is not safe for concurrent use.
type Legacy struct {
	seed int64 // always in [0, 2^48)
}

// New returns a generator seeded with seed.
func New(seed int64) *Legacy {
	r := &Legacy{}
	r.SetSeed(seed)
	return r
}

// SetSeed scrambles seed and resets the generator state.
func (r *Legacy) SetSeed(seed int64) {
	r.seed = (seed ^ multiplier) & mask
}

// Next advances the state once and returns its top bits as a signed value.
// bits must be in [1, 32].
func (r *Legacy) Next(bits int) int32 {
	r.seed = (r.seed*multiplier + increment) & mask
	return int32(r.seed >> (48 - bits))
}

// NextInt returns a uniformly distributed int32 over its full range.
func (r *Legacy) NextInt() int32 {
	return r.Next(32)
}

// NextIntn returns a uniformly distributed value in [0, bound).
// It panics if bound <= 0.
func (r *Legacy) NextIntn(bound int32) int32 {
	if bound <= 0 {
		panic("rng: bound must be positive")
	}

	if bound&-bound == bound {
		return int32((int64(bound) * int64(r.Next(31))) >> 31)
	}

	for {
		bits := r.Next(31)
		val := bits % bound
		// Overflow of the int32 sum marks a draw from the biased tail.
		if bits-val+(bound-1) >= 0 {
			return val
		}
	}
}

// NextLong combines two 32-bit draws; the low half is sign-extended.
func (r *Legacy) NextLong() int64 {
	hi := int64(r.Next(32))
	lo := int64(r.Next(32))
	return hi<<32 + lo
}
