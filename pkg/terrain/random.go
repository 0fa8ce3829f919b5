package terrain

import "math"

// RandomStream is a seedable linear congruential generator. Its sequence is
// bit-compatible with the engine stream that authored terrain seeds, so a
// seed reproduces the same body tiles everywhere.
type RandomStream struct {
	initialSeed int32
	seed        int32
}

// NewRandomStream returns a stream starting at seed.
func NewRandomStream(seed int32) *RandomStream {
	return &RandomStream{initialSeed: seed, seed: seed}
}

// Reset rewinds the stream to its initial seed.
func (r *RandomStream) Reset() {
	r.seed = r.initialSeed
}

// InitialSeed returns the seed the stream was created with.
func (r *RandomStream) InitialSeed() int32 {
	return r.initialSeed
}

// CurrentSeed returns the current internal state.
func (r *RandomStream) CurrentSeed() int32 {
	return r.seed
}

func (r *RandomStream) mutate() {
	r.seed = int32(uint32(r.seed)*196314165 + 907633515)
}

// UnsignedInt advances the stream and returns the raw state.
func (r *RandomStream) UnsignedInt() uint32 {
	r.mutate()
	return uint32(r.seed)
}

// Fraction advances the stream and returns a value in [0, 1).
func (r *RandomStream) Fraction() float32 {
	r.mutate()
	bits := uint32(0x3F800000) | (uint32(r.seed) & 0x007FFFFF)
	return math.Float32frombits(bits) - 1
}

// RandHelper returns a value in [0, n), or 0 when n <= 0.
func (r *RandomStream) RandHelper(n int) int {
	if n <= 0 {
		return 0
	}
	return min(int(r.Fraction()*float32(n)), n-1)
}

// RandRange returns a value in [lo, hi].
func (r *RandomStream) RandRange(lo, hi int) int {
	return lo + r.RandHelper(hi-lo+1)
}
