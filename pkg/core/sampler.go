package core

import "math"

// fallbackState replaces a zero xorshift state, which would otherwise stay zero forever.
const fallbackState uint32 = 0x9E3779B9

// Sampler is a xorshift32 pseudo-random stream. A Sampler is not safe for
// concurrent use; each worker (or pixel span) owns its own instance.
type Sampler struct {
	state uint32
}

// NewSampler creates a sampler whose stream is fully determined by the base
// seed and a stream identifier, so concurrent streams are independent and
// reproducible.
func NewSampler(seed, stream uint32) *Sampler {
	return &Sampler{state: MixSeed(seed, stream)}
}

// MixSeed hashes a list of 32-bit values into a non-zero xorshift state.
// The GPU compute shader mirrors this with the same Wang hash.
func MixSeed(values ...uint32) uint32 {
	var h uint32
	for _, v := range values {
		h = WangHash(h ^ v)
	}
	if h == 0 {
		return fallbackState
	}
	return h
}

// WangHash is Thomas Wang's 32-bit integer hash
func WangHash(x uint32) uint32 {
	x = (x ^ 61) ^ (x >> 16)
	x *= 9
	x ^= x >> 4
	x *= 0x27d4eb2d
	x ^= x >> 15
	return x
}

// NextUint32 advances the xorshift32 state and returns it
func (s *Sampler) NextUint32() uint32 {
	x := s.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	s.state = x
	return x
}

// Float64 returns a uniform value in the open interval (0, 1).
// xorshift32 never yields zero from a non-zero state.
func (s *Sampler) Float64() float64 {
	return float64(s.NextUint32()) / 4294967296.0
}

// Normal returns a standard normal draw (mean 0, sd 1) using Box–Muller
func (s *Sampler) Normal() float64 {
	theta := 2 * math.Pi * s.Float64()
	rho := math.Sqrt(-2 * math.Log(s.Float64()))
	return rho * math.Cos(theta)
}

// UnitSphere returns a direction uniformly distributed on the unit sphere,
// built by normalizing three independent standard normals.
func (s *Sampler) UnitSphere() Vec3 {
	for {
		v := NewVec3(s.Normal(), s.Normal(), s.Normal())
		if v.LengthSquared() > 0 {
			return v.Normalize()
		}
	}
}

// State returns the current internal state, mainly for diagnostics and tests
func (s *Sampler) State() uint32 {
	return s.state
}
