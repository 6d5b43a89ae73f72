package digi

import "fmt"

// Topology describes the barrel readout granularity: bars around the
// cylinder and readout cells along each bar.
type Topology struct {
	NPhi        int     // bars around the barrel
	SubBins     int     // sensors along one bar
	BarLength   float64 // mm
	Granularity int     // cells per sensor along the bar
}

func (t Topology) CellsPerBar() int {
	return t.SubBins * t.Granularity
}

func (t Topology) NumChannels() int {
	return t.NPhi * t.CellsPerBar()
}

func (t Topology) validate() error {
	if t.NPhi <= 0 {
		return &ErrInvalidConfig{Field: "n_phi", Reason: "must be positive"}
	}
	if t.SubBins <= 0 {
		return &ErrInvalidConfig{Field: "sub_bins", Reason: "must be positive"}
	}
	if t.Granularity <= 0 {
		return &ErrInvalidConfig{Field: "granularity", Reason: "must be positive"}
	}
	if t.BarLength <= 0 {
		return &ErrInvalidConfig{Field: "bar_length", Reason: "must be positive"}
	}
	return nil
}

// ChannelRecord carries the static front-end conditions of one channel,
// resolved once at initialization. The conditions database may override the
// configured defaults per channel.
type ChannelRecord struct {
	PedestalMean  float64
	PedestalSigma float64
}

// Geometry is the one-time handle tying together the topology, the cell
// identifier codec and the channel arena. Built once before the event loop
// and never re-queried per event; safe for concurrent reads.
type Geometry struct {
	Topology Topology
	Coder    *CellIDCoder
	phiField string
	zField   string
	channels []ChannelRecord
}

func NewGeometry(topology Topology, coder *CellIDCoder, phiField, zField string, defaults ChannelRecord) (*Geometry, error) {
	if err := topology.validate(); err != nil {
		return nil, err
	}
	if _, err := coder.Get(0, phiField); err != nil {
		return nil, &ErrInvalidConfig{Field: "phi_field", Reason: err.Error()}
	}
	if _, err := coder.Get(0, zField); err != nil {
		return nil, &ErrInvalidConfig{Field: "z_field", Reason: err.Error()}
	}
	channels := make([]ChannelRecord, topology.NumChannels())
	for i := range channels {
		channels[i] = defaults
	}
	return &Geometry{
		Topology: topology,
		Coder:    coder,
		phiField: phiField,
		zField:   zField,
		channels: channels,
	}, nil
}

// ResolveChannel maps a cell identifier to the linear channel index of the
// arena. Identifiers outside the topology are reported, not fatal.
func (g *Geometry) ResolveChannel(cellID uint64) (int, error) {
	phi, err := g.Coder.Get(cellID, g.phiField)
	if err != nil {
		return -1, err
	}
	z, err := g.Coder.Get(cellID, g.zField)
	if err != nil {
		return -1, err
	}
	if int(phi) >= g.Topology.NPhi || int(z) >= g.Topology.CellsPerBar() {
		return -1, &ErrUnknownChannel{CellID: cellID}
	}
	return int(phi)*g.Topology.CellsPerBar() + int(z), nil
}

// CellIDForChannel rewrites the position fields of base so the identifier
// points at the given channel. Non-position fields (system, layer) are kept
// from base. Used to address neighbor channels during signal sharing.
func (g *Geometry) CellIDForChannel(base uint64, channel int) (uint64, error) {
	if channel < 0 || channel >= len(g.channels) {
		return 0, fmt.Errorf("channel %d outside the arena", channel)
	}
	cellsPerBar := g.Topology.CellsPerBar()
	id, err := g.Coder.Set(base, g.phiField, uint64(channel/cellsPerBar))
	if err != nil {
		return 0, err
	}
	return g.Coder.Set(id, g.zField, uint64(channel%cellsPerBar))
}

// Channel returns the static conditions of one channel.
func (g *Geometry) Channel(channel int) ChannelRecord {
	return g.channels[channel]
}

// SetChannelConditions overrides the conditions of one channel, typically
// from the calibration database.
func (g *Geometry) SetChannelConditions(channel int, record ChannelRecord) error {
	if channel < 0 || channel >= len(g.channels) {
		return fmt.Errorf("channel %d outside the arena", channel)
	}
	g.channels[channel] = record
	return nil
}
