package digi

import (
	"math"
	"math/rand"
	"testing"
)

func TestRelativeEnergyRes(t *testing.T) {
	smearer := Smearer{A: 0.1, B: 0.01, C: 0.02}

	got := smearer.RelativeEnergyRes(4.0)
	want := 0.1/2 + 0.01 + 0.02/4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("RelativeEnergyRes(4) = %v, want %v", got, want)
	}

	// Two-term mode: c = 0 contributes nothing
	twoTerm := Smearer{A: 0.1, B: 0.01}
	got = twoTerm.RelativeEnergyRes(4.0)
	want = 0.1/2 + 0.01
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("two-term RelativeEnergyRes(4) = %v, want %v", got, want)
	}

	// Non-positive energies fall back to the constant term
	if got := smearer.RelativeEnergyRes(0); got != 0.01 {
		t.Errorf("RelativeEnergyRes(0) = %v, want the constant term", got)
	}
}

func TestSmearMoments(t *testing.T) {
	smearer := Smearer{A: 0.1, B: 0.01, C: 0.02, TRes: 0.025}
	rng := rand.New(rand.NewSource(42))

	const trials = 50000
	energy := 1.0
	hitTime := 5.0

	var sumE, sumE2, sumT, sumT2 float64
	for i := 0; i < trials; i++ {
		e, tt := smearer.Smear(rng, energy, hitTime)
		sumE += e
		sumE2 += e * e
		sumT += tt
		sumT2 += tt * tt
	}
	meanE := sumE / trials
	stdE := math.Sqrt(sumE2/trials - meanE*meanE)
	meanT := sumT / trials
	stdT := math.Sqrt(sumT2/trials - meanT*meanT)

	expectedStdE := smearer.RelativeEnergyRes(energy) * energy
	if math.Abs(meanE-energy) > 0.01*energy {
		t.Errorf("energy mean = %v, want %v within 1%%", meanE, energy)
	}
	if math.Abs(stdE-expectedStdE) > 0.05*expectedStdE {
		t.Errorf("energy std = %v, want %v within 5%%", stdE, expectedStdE)
	}
	if math.Abs(meanT-hitTime) > 0.01 {
		t.Errorf("time mean = %v, want %v", meanT, hitTime)
	}
	if math.Abs(stdT-smearer.TRes) > 0.05*smearer.TRes {
		t.Errorf("time std = %v, want %v within 5%%", stdT, smearer.TRes)
	}
}

func TestSmearDrawOrder(t *testing.T) {
	smearer := Smearer{A: 0.1, B: 0.01, TRes: 0.025}

	rng := rand.New(rand.NewSource(7))
	energy, hitTime := smearer.Smear(rng, 1.0, 5.0)

	// Energy consumes the first gaussian draw, time the second
	reference := rand.New(rand.NewSource(7))
	wantEnergy := 1.0 * (1 + smearer.RelativeEnergyRes(1.0)*reference.NormFloat64())
	wantTime := 5.0 + smearer.TRes*reference.NormFloat64()

	if energy != wantEnergy {
		t.Errorf("energy = %v, want %v", energy, wantEnergy)
	}
	if hitTime != wantTime {
		t.Errorf("time = %v, want %v", hitTime, wantTime)
	}
}

func TestSmearReproducible(t *testing.T) {
	smearer := Smearer{A: 0.1, B: 0.01, TRes: 0.025}

	run := func() [20][2]float64 {
		rng := rand.New(rand.NewSource(99))
		var out [20][2]float64
		for i := range out {
			e, tt := smearer.Smear(rng, 1.0+float64(i), 5.0)
			out[i] = [2]float64{e, tt}
		}
		return out
	}
	if run() != run() {
		t.Error("fixed seed did not reproduce the sequence")
	}
}
