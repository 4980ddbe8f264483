package engine

// ---------------------------------------------------------------------------
// xorshift64 RNG — inline, no interface
// ---------------------------------------------------------------------------

// RNG is a small deterministic xorshift64 generator. Every shuffle and
// coin flip in this package draws from an explicit RNG so that a fixed
// seed reproduces an identical round.
type RNG struct {
	state uint64
}

// NewRNG returns a generator seeded with the given value.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &RNG{state: seed}
}

func (r *RNG) next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// Uint64 returns the next raw 64-bit value.
func (r *RNG) Uint64() uint64 {
	return r.next()
}

// IntN returns a value in [0, n). n must be positive.
func (r *RNG) IntN(n int) int {
	return int(r.next() % uint64(n))
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.next()>>11) / float64(1<<53)
}

// Bool returns true with probability 1/2.
func (r *RNG) Bool() bool {
	return r.next()&1 == 1
}

// Shuffle performs a Fisher-Yates shuffle over n elements.
func (r *RNG) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		swap(i, j)
	}
}
