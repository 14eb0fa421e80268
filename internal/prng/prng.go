// Package prng provides a small seeded generator and a reproducible shuffle.
//
// The generator is Mulberry32. It is not suitable for anything security
// related; its only job is to give the same permutation for the same seed
// on every platform.
package prng

// Mulberry32 is a 32-bit state generator. Not safe for concurrent use.
type Mulberry32 struct {
	state uint32
}

// New returns a generator seeded with seed.
func New(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed}
}

// Uint32 advances the state and returns the next 32 mixed bits.
func (m *Mulberry32) Uint32() uint32 {
	m.state += 0x6D2B79F5
	s := m.state
	t := (s ^ s>>15) * (s | 1)
	t = (t + (t^t>>7)*(t|61)) ^ t
	return t ^ t>>14
}

// Float64 returns a value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / (1 << 32)
}

// Intn returns a value in [0, n). n must be positive.
func (m *Mulberry32) Intn(n int) int {
	return int(m.Float64() * float64(n))
}

// Shuffle returns a Fisher-Yates permutation of list driven by seed.
// The input slice is not modified.
func Shuffle[T any](list []T, seed uint32) []T {
	out := make([]T, len(list))
	copy(out, list)

	rng := New(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
