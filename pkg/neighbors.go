package digi

import "fmt"

// NeighborFinder precomputes, for every channel of the barrel topology, the
// list of geometrically adjacent channels. The phi dimension is a ring: the
// first and last bar are mutual neighbors. Along the bar there is no wrap.
// The table is an arena of index lists, immutable after construction, so it
// can be shared read-only across worker engines.
type NeighborFinder struct {
	topology  Topology
	neighbors [][]int
}

func NewNeighborFinder(topology Topology) *NeighborFinder {
	cellsPerBar := topology.CellsPerBar()
	numChannels := topology.NumChannels()
	finder := &NeighborFinder{
		topology:  topology,
		neighbors: make([][]int, numChannels),
	}
	for channel := 0; channel < numChannels; channel++ {
		phi := channel / cellsPerBar
		z := channel % cellsPerBar
		list := make([]int, 0, 4)
		if topology.NPhi > 1 {
			prev := (phi - 1 + topology.NPhi) % topology.NPhi
			next := (phi + 1) % topology.NPhi
			list = append(list, prev*cellsPerBar+z)
			// With two bars the ring collapses and prev == next
			if next != prev {
				list = append(list, next*cellsPerBar+z)
			}
		}
		if z > 0 {
			list = append(list, phi*cellsPerBar+z-1)
		}
		if z < cellsPerBar-1 {
			list = append(list, phi*cellsPerBar+z+1)
		}
		finder.neighbors[channel] = list
	}
	return finder
}

// Neighbors returns the channels adjacent to the given one. Requests
// outside the topology yield an empty list and a diagnostic, never a
// failure. The returned slice must not be modified.
func (f *NeighborFinder) Neighbors(channel int) []int {
	if channel < 0 || channel >= len(f.neighbors) {
		if configuration.Verbosity > 1 {
			message := fmt.Sprintf("Neighbor request for channel %d outside the topology", channel)
			logger.Info(message, "neighbors")
		}
		return nil
	}
	return f.neighbors[channel]
}

// NumChannels returns the size of the arena.
func (f *NeighborFinder) NumChannels() int {
	return len(f.neighbors)
}
