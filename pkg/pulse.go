package digi

import "math"

// Scale constant of the AC-LGAD analog pulse model, fitted to test-beam
// waveforms together with the rise time and analog sigma.
const landauScale = -113.766

// LandauAmplitude is the analytic pulse-shape model: the instantaneous
// analog amplitude at time t of a pulse peaking near mpv with width sigma,
// scaled by gain. The pulse is unimodal, asymmetric and single-sign
// (inverted). Pure function: identical parameters always produce identical
// output.
func LandauAmplitude(t, mpv, sigma, gain float64) float64 {
	return landauScale * gain * landauPDF(t, mpv, sigma)
}

// TimeGrid is the fixed discretized time axis the analog waveforms are
// accumulated on.
type TimeGrid struct {
	TMin  float64
	TMax  float64
	NBins int
}

func (g TimeGrid) Step() float64 {
	return (g.TMax - g.TMin) / float64(g.NBins)
}

// Time returns the center of the given bin.
func (g TimeGrid) Time(bin int) float64 {
	return g.TMin + (float64(bin)+0.5)*g.Step()
}

// Contains reports whether t falls inside the grid window.
func (g TimeGrid) Contains(t float64) bool {
	return t >= g.TMin && t <= g.TMax
}

// landauPDF evaluates the Landau density at x for location mu and width
// sigma, using the CERNLIB DENLAN rational approximations (the expansion
// behind TMath::Landau). Normalized by sigma.
func landauPDF(x, mu, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	v := (x - mu) / sigma
	return denlan(v) / sigma
}

var (
	denlanP1 = [5]float64{0.4259894875, -0.1249762550, 0.03984243700, -0.006298287635, 0.001511162253}
	denlanQ1 = [5]float64{1.0, -0.3388260629, 0.09594393323, -0.01608042283, 0.003778942063}
	denlanP2 = [5]float64{0.1788541609, 0.1173957403, 0.01488850518, -0.001394989411, 0.0001283617211}
	denlanQ2 = [5]float64{1.0, 0.7428795082, 0.3153932961, 0.06694219548, 0.008790609714}
	denlanP3 = [5]float64{0.1788544503, 0.09359161662, 0.006325387654, 0.00006611667319, -0.000002031049101}
	denlanQ3 = [5]float64{1.0, 0.6097809921, 0.2560616665, 0.04746722384, 0.006957301675}
	denlanP4 = [5]float64{0.9874054407, 118.6723273, 849.2794360, -743.7792444, 427.0262186}
	denlanQ4 = [5]float64{1.0, 106.8615961, 337.6496214, 2016.712389, 1597.063511}
	denlanP5 = [5]float64{1.003675074, 167.5702434, 4789.711289, 21217.86767, -22324.94910}
	denlanQ5 = [5]float64{1.0, 156.9424537, 3745.310488, 9834.698876, 66924.28357}
	denlanP6 = [5]float64{1.000827619, 664.9143136, 62972.92665, 475554.6998, -5743609.109}
	denlanQ6 = [5]float64{1.0, 651.4101098, 56974.73333, 165917.4725, -2815759.939}
	denlanA1 = [3]float64{0.04166666667, -0.01996527778, 0.02709538966}
	denlanA2 = [2]float64{-1.845568670, -4.284640743}
)

func denlanRatio(p, q [5]float64, v float64) float64 {
	num := p[0] + (p[1]+(p[2]+(p[3]+p[4]*v)*v)*v)*v
	den := q[0] + (q[1]+(q[2]+(q[3]+q[4]*v)*v)*v)*v
	return num / den
}

func denlan(v float64) float64 {
	switch {
	case v < -5.5:
		u := math.Exp(v + 1.0)
		if u < 1e-10 {
			return 0
		}
		ue := math.Exp(-1 / u)
		us := math.Sqrt(u)
		return 0.3989422803 * (ue / us) * (1 + (denlanA1[0]+(denlanA1[1]+denlanA1[2]*u)*u)*u)
	case v < -1:
		u := math.Exp(-v - 1)
		return math.Exp(-u) * math.Sqrt(u) * denlanRatio(denlanP1, denlanQ1, v)
	case v < 1:
		return denlanRatio(denlanP2, denlanQ2, v)
	case v < 5:
		return denlanRatio(denlanP3, denlanQ3, v)
	case v < 12:
		u := 1 / v
		return u * u * denlanRatio(denlanP4, denlanQ4, u)
	case v < 50:
		u := 1 / v
		return u * u * denlanRatio(denlanP5, denlanQ5, u)
	case v < 300:
		u := 1 / v
		return u * u * denlanRatio(denlanP6, denlanQ6, u)
	default:
		u := 1 / v
		return u * u * (1 + (denlanA2[0]+denlanA2[1]*u)*u)
	}
}
