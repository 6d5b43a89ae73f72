package digi

import (
	"math"
	"math/rand"
)

// Digitizer converts the truth-level energy deposits of one event into
// quantized ADC/TDC raw hits. Each instance owns a private random stream
// advanced by smearing and pedestal sampling, so one instance must never be
// shared across goroutines; the geometry and neighbor table are immutable
// and may be shared by all workers.
type Digitizer struct {
	config     Configuration
	geo        *Geometry
	neighbors  *NeighborFinder
	aggregator *HitAggregator
	rng        *rand.Rand
	adcMax     uint32
	tdcMax     uint32
}

// NewDigitizer validates the configuration and builds the engine. A
// configuration the quantization cannot be defined for is refused here;
// nothing after this point is fatal to an event.
func NewDigitizer(config Configuration, geo *Geometry, seed int64) (*Digitizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	neighbors := NewNeighborFinder(geo.Topology)
	aggregator, err := NewHitAggregator(config, geo, neighbors)
	if err != nil {
		return nil, err
	}
	return &Digitizer{
		config:     config,
		geo:        geo,
		neighbors:  neighbors,
		aggregator: aggregator,
		rng:        rand.New(rand.NewSource(seed)),
		adcMax:     uint32(1)<<config.ADCBits - 1,
		tdcMax:     uint32(1)<<config.TDCBits - 1,
	}, nil
}

// Reseed resets the random stream. The event-loop host reseeds per event
// (base seed + event id) so results do not depend on worker scheduling.
func (d *Digitizer) Reseed(seed int64) {
	d.rng = rand.New(rand.NewSource(seed))
}

// NeighborFinder exposes the adjacency table, mostly for diagnostics.
func (d *Digitizer) NeighborFinder() *NeighborFinder {
	return d.neighbors
}

// Execute digitizes one event. An empty input yields an empty output;
// per-hit geometry failures are counted in the returned stats and skipped.
// Channels below the zero-suppression threshold emit no raw hit. Pedestals
// are drawn in ascending merge-key order, one per emitting channel, which
// together with the per-hit smearing order makes the whole event
// reproducible for a fixed seed.
func (d *Digitizer) Execute(hits []SimHit) ([]RawHit, DigiStats) {
	var stats DigiStats
	rawHits := make([]RawHit, 0, len(hits))
	if len(hits) == 0 {
		return rawHits, stats
	}

	signals := d.aggregator.Aggregate(hits, d.rng, &stats)
	for _, signal := range signals {
		if signal.Amplitude < d.config.Threshold {
			stats.Suppressed++
			continue
		}
		record := d.geo.Channel(signal.Channel)
		pedestal := record.PedestalMean + record.PedestalSigma*d.rng.NormFloat64()
		rawHits = append(rawHits, RawHit{
			CellID: signal.CellID,
			ADC:    d.quantizeADC(signal.Amplitude, pedestal, &stats),
			TDC:    d.quantizeTDC(signal.Time, &stats),
		})
	}
	return rawHits, stats
}

// quantizeADC scales the peak amplitude linearly over the dynamic range and
// adds the pedestal. Values outside the representable range saturate to the
// boundary codes, never wrap.
func (d *Digitizer) quantizeADC(amplitude, pedestal float64, stats *DigiStats) uint32 {
	code := math.Round(pedestal + amplitude/d.config.DyRangeADC*float64(d.adcMax))
	switch {
	case code < 0:
		return 0
	case code > float64(d.adcMax):
		stats.Saturated++
		return d.adcMax
	}
	return uint32(code)
}

// quantizeTDC converts the effective arrival time to TDC counts within the
// bunch-crossing period. The period is physically cyclic, but wrapping
// would alias late hits onto early codes, so out-of-range values saturate
// like the ADC path.
func (d *Digitizer) quantizeTDC(time float64, stats *DigiStats) uint32 {
	code := math.Round(time / d.config.TDCResolution)
	switch {
	case code < 0:
		return 0
	case code > float64(d.tdcMax):
		stats.Saturated++
		return d.tdcMax
	}
	return uint32(code)
}

// ToDigitalCode expands a quantized value into its individual bits, LSB
// first. Used by front-end emulation studies downstream.
func ToDigitalCode(value uint32, bits int) []bool {
	code := make([]bool, bits)
	for i := 0; i < bits; i++ {
		code[i] = value&(1<<i) != 0
	}
	return code
}
