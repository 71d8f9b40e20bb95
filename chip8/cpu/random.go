package cpu

import "math/rand/v2"

// RandomSource provides the bytes used by the RND instruction.
type RandomSource interface {
	Byte() uint8
}

// RandomFunc adapts a plain function to a RandomSource.
type RandomFunc func() uint8

func (f RandomFunc) Byte() uint8 {
	return f()
}

type globalRandom struct{}

func (globalRandom) Byte() uint8 {
	return uint8(rand.Uint32())
}

// NewSystemRandom returns a source backed by the process-wide generator.
func NewSystemRandom() RandomSource {
	return globalRandom{}
}

type seededRandom struct {
	rng *rand.Rand
}

func (s *seededRandom) Byte() uint8 {
	return uint8(s.rng.Uint32())
}

// NewSeededRandom returns a deterministic source, handy for reproducible runs.
func NewSeededRandom(seed uint64) RandomSource {
	return &seededRandom{rng: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))}
}
