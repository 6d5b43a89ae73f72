package digi

// SimHit is one truth-level energy deposit coming from the simulation.
// The particle reference is opaque and passed through unmodified.
type SimHit struct {
	CellID      uint64
	EDep        float64
	Time        float64
	Position    [3]float64
	ParticleRef uint64
}

// RawHit is the digitized output record for one channel in one event.
type RawHit struct {
	CellID uint64
	ADC    uint32
	TDC    uint32
}

// AnalogSignal is the per-event aggregate of all pulses landing on one
// channel: the peak amplitude of the summed waveform and the effective
// arrival time. Transient, rebuilt on every Execute call.
type AnalogSignal struct {
	CellID    uint64
	Channel   int
	Amplitude float64
	Time      float64
}

// DigiStats carries the per-event diagnostic counters. Per-hit problems
// increment a counter instead of failing the event.
type DigiStats struct {
	HitsIn          int
	HitsOutOfWindow int
	UnknownChannels int
	Saturated       int
	Suppressed      int
}

func (s *DigiStats) Add(other DigiStats) {
	s.HitsIn += other.HitsIn
	s.HitsOutOfWindow += other.HitsOutOfWindow
	s.UnknownChannels += other.UnknownChannels
	s.Saturated += other.Saturated
	s.Suppressed += other.Suppressed
}

type EventType struct {
	RunNumber uint32
	EventID   uint32
	Timestamp uint64
	SimHits   []SimHit
	RawHits   []RawHit
	Stats     DigiStats
	Error     bool
}
