package digi

import (
	"math"
	"math/rand"
	"testing"
)

func testAggregator(t *testing.T, config Configuration, geo *Geometry) *HitAggregator {
	t.Helper()
	aggregator, err := NewHitAggregator(config, geo, NewNeighborFinder(geo.Topology))
	if err != nil {
		t.Fatalf("NewHitAggregator: %v", err)
	}
	return aggregator
}

func TestAggregateMergesByKey(t *testing.T) {
	config := testConfiguration()
	geo := testGeometry(t, config)
	aggregator := testAggregator(t, config, geo)

	id := testCellID(t, geo, 5, 3)
	hits := []SimHit{
		{CellID: id, EDep: 1.0, Time: 5.0},
		{CellID: id, EDep: 1.0, Time: 5.0},
	}
	var stats DigiStats
	signals := aggregator.Aggregate(hits, rand.New(rand.NewSource(1)), &stats)
	if len(signals) != 1 {
		t.Fatalf("expected one merged signal, got %d", len(signals))
	}

	// Coincident pulses accumulate linearly in each bin
	var single DigiStats
	one := aggregator.Aggregate(hits[:1], rand.New(rand.NewSource(1)), &single)
	if len(one) != 1 {
		t.Fatalf("expected one signal, got %d", len(one))
	}
	ratio := signals[0].Amplitude / one[0].Amplitude
	if math.Abs(ratio-2) > 1e-9 {
		t.Errorf("coincident amplitude ratio = %v, want 2", ratio)
	}
}

func TestAggregateSeparateChannels(t *testing.T) {
	config := testConfiguration()
	geo := testGeometry(t, config)
	aggregator := testAggregator(t, config, geo)

	hits := []SimHit{
		{CellID: testCellID(t, geo, 5, 3), EDep: 1.0, Time: 5.0},
		{CellID: testCellID(t, geo, 20, 7), EDep: 1.0, Time: 5.0},
	}
	var stats DigiStats
	signals := aggregator.Aggregate(hits, rand.New(rand.NewSource(1)), &stats)
	if len(signals) != 2 {
		t.Fatalf("expected two signals, got %d", len(signals))
	}
	// Output is sorted by merge key
	if signals[0].CellID >= signals[1].CellID {
		t.Errorf("signals not sorted: %x, %x", signals[0].CellID, signals[1].CellID)
	}
}

func TestAggregateCrossTalk(t *testing.T) {
	config := testConfiguration()
	config.CrossTalk = true
	config.CrossTalkScale = 0.1
	geo := testGeometry(t, config)
	aggregator := testAggregator(t, config, geo)

	hits := []SimHit{{CellID: testCellID(t, geo, 5, 3), EDep: 1.0, Time: 5.0}}
	var stats DigiStats
	signals := aggregator.Aggregate(hits, rand.New(rand.NewSource(1)), &stats)

	// The struck interior channel has four neighbors
	if len(signals) != 5 {
		t.Fatalf("expected 5 signals with cross talk, got %d", len(signals))
	}

	struck, err := geo.ResolveChannel(hits[0].CellID)
	if err != nil {
		t.Fatalf("ResolveChannel: %v", err)
	}
	var main, neighbor AnalogSignal
	for _, signal := range signals {
		if signal.Channel == struck {
			main = signal
		} else {
			neighbor = signal
		}
	}
	ratio := neighbor.Amplitude / main.Amplitude
	if math.Abs(ratio-config.CrossTalkScale) > 1e-9 {
		t.Errorf("neighbor amplitude ratio = %v, want %v", ratio, config.CrossTalkScale)
	}
}

func TestAggregateOutOfWindow(t *testing.T) {
	config := testConfiguration()
	geo := testGeometry(t, config)
	aggregator := testAggregator(t, config, geo)

	hits := []SimHit{
		{CellID: testCellID(t, geo, 5, 3), EDep: 1.0, Time: config.TMax + 10},
		{CellID: testCellID(t, geo, 5, 3), EDep: 1.0, Time: config.TMin - 10},
	}
	var stats DigiStats
	signals := aggregator.Aggregate(hits, rand.New(rand.NewSource(1)), &stats)
	if len(signals) != 0 {
		t.Errorf("expected no signals, got %d", len(signals))
	}
	if stats.HitsOutOfWindow != 2 {
		t.Errorf("out of window = %d, want 2", stats.HitsOutOfWindow)
	}
	if stats.HitsIn != 2 {
		t.Errorf("hits in = %d, want 2", stats.HitsIn)
	}
}

func TestAggregateArrivalTime(t *testing.T) {
	config := testConfiguration()
	geo := testGeometry(t, config)
	aggregator := testAggregator(t, config, geo)

	hits := []SimHit{{CellID: testCellID(t, geo, 5, 3), EDep: 1.0, Time: 5.0}}
	var stats DigiStats
	signals := aggregator.Aggregate(hits, rand.New(rand.NewSource(1)), &stats)
	if len(signals) != 1 {
		t.Fatalf("expected one signal, got %d", len(signals))
	}

	// The threshold crossing precedes the pulse peak and sits near the
	// true hit time
	peak := hits[0].Time + config.RiseTime
	if signals[0].Time >= peak {
		t.Errorf("arrival time %v not before the peak %v", signals[0].Time, peak)
	}
	if signals[0].Time < hits[0].Time-5*config.SigmaAnalog {
		t.Errorf("arrival time %v too early for a hit at %v", signals[0].Time, hits[0].Time)
	}
}

func TestNewHitAggregatorRejectsUnknownSumField(t *testing.T) {
	config := testConfiguration()
	config.SumFields = []string{"system", "sector"}
	geo := testGeometry(t, config)
	if _, err := NewHitAggregator(config, geo, NewNeighborFinder(geo.Topology)); err == nil {
		t.Error("expected an error for an unknown sum field")
	}
}
