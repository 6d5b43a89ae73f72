package digi

import (
	"math"
	"math/rand"
)

// Smearer applies the configured detector resolution to a true
// (energy, time) pair. It holds only its coefficients; the random stream is
// owned by the engine and passed in explicitly, so instances can be shared
// and tested in isolation.
type Smearer struct {
	A    float64 // stochastic term, relative
	B    float64 // constant term, relative
	C    float64 // noise term, relative; 0 selects the two-term mode
	TRes float64 // absolute time resolution
}

// RelativeEnergyRes returns the relative energy resolution
// a/sqrt(E) + b + c/E at the given true energy.
func (s Smearer) RelativeEnergyRes(energy float64) float64 {
	res := s.B
	if energy > 0 {
		res += s.A / math.Sqrt(energy)
		if s.C != 0 {
			res += s.C / energy
		}
	}
	return res
}

// Smear draws the smeared energy and time from the given stream. The draw
// order is fixed (energy first, then time) so a fixed seed and call order
// reproduce the same sequence. Negative smeared energies are not
// special-cased here; the digitizer clips them.
func (s Smearer) Smear(rng *rand.Rand, energy, time float64) (float64, float64) {
	smearedEnergy := energy * (1 + s.RelativeEnergyRes(energy)*rng.NormFloat64())
	smearedTime := time + s.TRes*rng.NormFloat64()
	return smearedEnergy, smearedTime
}
