package digi

import (
	"fmt"
	"math/rand"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// HitAggregator partitions the smeared hits of one event into logical
// channels by comparing the configured sum fields of their cell identifiers
// and accumulates their analog pulses into one waveform per channel.
type HitAggregator struct {
	config    Configuration
	geo       *Geometry
	neighbors *NeighborFinder
	smearer   Smearer
	grid      TimeGrid
	sumMask   uint64
}

// signalGroup is the transient waveform of one channel while an event is
// being aggregated.
type signalGroup struct {
	cellID   uint64
	channel  int
	waveform []float64
}

func NewHitAggregator(config Configuration, geo *Geometry, neighbors *NeighborFinder) (*HitAggregator, error) {
	sumMask, err := geo.Coder.Mask(config.SumFields)
	if err != nil {
		return nil, &ErrInvalidConfig{Field: "sum_fields", Reason: err.Error()}
	}
	return &HitAggregator{
		config:    config,
		geo:       geo,
		neighbors: neighbors,
		smearer: Smearer{
			A:    config.EnergyResA,
			B:    config.EnergyResB,
			C:    config.EnergyResC,
			TRes: config.TimeRes,
		},
		grid: TimeGrid{
			TMin:  config.TMin,
			TMax:  config.TMax,
			NBins: config.NBins,
		},
		sumMask: sumMask,
	}, nil
}

// Aggregate smears every hit and sums the pulse contributions per channel.
// Hits are consumed in input order and each one advances the random stream
// exactly twice (energy draw, then time draw), so a fixed seed reproduces
// the event bit for bit. The returned signals are sorted by merge key.
func (a *HitAggregator) Aggregate(hits []SimHit, rng *rand.Rand, stats *DigiStats) []AnalogSignal {
	groups := make(map[uint64]*signalGroup)

	for _, hit := range hits {
		stats.HitsIn++
		channel, err := a.geo.ResolveChannel(hit.CellID)
		if err != nil {
			stats.UnknownChannels++
			if a.config.Verbosity > 1 {
				message := fmt.Sprintf("Skipping hit: %v", err)
				logger.Info(message, "aggregator")
			}
			continue
		}
		energy, time := a.smearer.Smear(rng, hit.EDep, hit.Time)
		// Out-of-window hits are excluded, never clipped into range
		if !a.grid.Contains(time) {
			stats.HitsOutOfWindow++
			continue
		}
		a.addPulse(a.group(groups, hit.CellID, channel), energy, time, 1.0)
		if a.config.CrossTalk {
			a.shareWithNeighbors(groups, hit.CellID, channel, energy, time)
		}
	}

	keys := maps.Keys(groups)
	slices.Sort(keys)
	signals := make([]AnalogSignal, 0, len(keys))
	for _, key := range keys {
		signals = append(signals, a.extractSignal(groups[key]))
	}
	return signals
}

// group returns the waveform accumulator for the channel owning cellID,
// creating it on first use. The merge key keeps only the sum fields.
func (a *HitAggregator) group(groups map[uint64]*signalGroup, cellID uint64, channel int) *signalGroup {
	key := cellID & a.sumMask
	g, ok := groups[key]
	if !ok {
		g = &signalGroup{
			cellID:   key,
			channel:  channel,
			waveform: make([]float64, a.grid.NBins),
		}
		groups[key] = g
	}
	return g
}

// addPulse accumulates one Landau pulse into the channel waveform.
// Coincident contributions sum linearly in each time bin.
func (a *HitAggregator) addPulse(g *signalGroup, energy, time, scale float64) {
	mpv := time + a.config.RiseTime
	charge := energy * a.config.Gain * scale
	for bin := range g.waveform {
		g.waveform[bin] += LandauAmplitude(a.grid.Time(bin), mpv, a.config.SigmaAnalog, charge)
	}
}

// shareWithNeighbors models capacitive coupling between adjacent channels:
// a scaled copy of the pulse is deposited on every geometric neighbor of
// the struck channel.
func (a *HitAggregator) shareWithNeighbors(groups map[uint64]*signalGroup, cellID uint64, channel int, energy, time float64) {
	for _, neighbor := range a.neighbors.Neighbors(channel) {
		neighborID, err := a.geo.CellIDForChannel(cellID, neighbor)
		if err != nil {
			if a.config.Verbosity > 1 {
				message := fmt.Sprintf("Skipping neighbor %d: %v", neighbor, err)
				logger.Info(message, "aggregator")
			}
			continue
		}
		a.addPulse(a.group(groups, neighborID, neighbor), energy, time, a.config.CrossTalkScale)
	}
}

// extractSignal reduces a waveform to its peak amplitude and effective
// arrival time. The pulse is inverted, so the peak is the most negative
// sample; the arrival time is the first threshold crossing, falling back
// to the peak position for signals below threshold.
func (a *HitAggregator) extractSignal(g *signalGroup) AnalogSignal {
	amplitude := 0.0
	peakBin := 0
	crossingBin := -1
	for bin, value := range g.waveform {
		depth := -value
		if depth > amplitude {
			amplitude = depth
			peakBin = bin
		}
		if crossingBin < 0 && depth > 0 && depth >= a.config.Threshold {
			crossingBin = bin
		}
	}
	timeBin := crossingBin
	if timeBin < 0 {
		timeBin = peakBin
	}
	return AnalogSignal{
		CellID:    g.cellID,
		Channel:   g.channel,
		Amplitude: amplitude,
		Time:      a.grid.Time(timeBin),
	}
}
