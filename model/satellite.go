package model

// Satellite represents one spacecraft within a constellation.
//
// A Satellite is created once per run and lives for the whole simulation;
// only its interface counts, its topological address and its forwarding
// table are mutated, and only by the forwarding computation that owns the
// snapshot. Satellite ids are global and are NOT guaranteed to be
// sequential or contiguous.
type Satellite struct {
	ID int

	// OrbitalPlaneID and IndexInPlane locate the satellite within the
	// constellation grid. They are informational; routing never assumes
	// ids can be derived from them.
	OrbitalPlaneID int
	IndexInPlane   int

	// NumberISLs counts established inter-satellite link interfaces.
	// ISL interfaces occupy local indices 0..NumberISLs-1 in discovery
	// order; the GSL interface, when used, sits at index NumberISLs.
	NumberISLs int
	// NumberGSLs counts ground-station link interfaces.
	NumberGSLs int

	// Addr is the hierarchical address assigned by the topological
	// routing scheme at t=0. Nil until assigned.
	Addr *TopologicalAddress

	// ForwardingTable maps a neighbor's serialized topological address
	// to the local interface index used to reach it.
	ForwardingTable map[int64]int
}

// NewSatellite constructs a satellite with an empty forwarding table and
// the single GSL interface every spacecraft carries.
func NewSatellite(id int) *Satellite {
	return &Satellite{
		ID:              id,
		NumberGSLs:      1,
		ForwardingTable: make(map[int64]int),
	}
}

// NeighborAddress derives the topological address of a neighbor satellite.
// It returns false when the neighbor id cannot be encoded.
func (s *Satellite) NeighborAddress(neighborID int) (TopologicalAddress, bool) {
	addr, err := NewSatelliteAddress(neighborID)
	if err != nil {
		return TopologicalAddress{}, false
	}
	return addr, true
}

// GSLInterfaceIndex returns the local interface index of the satellite's
// GSL interface, allocated immediately after all ISL interfaces.
func (s *Satellite) GSLInterfaceIndex() int {
	return s.NumberISLs
}

// InterfaceInfo carries the externally supplied per-node bandwidth record
// consumed by the bandwidth-state computation.
type InterfaceInfo struct {
	ID                    int     `json:"id"`
	AggregateMaxBandwidth float64 `json:"aggregate_max_bandwidth"`
}
