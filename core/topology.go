package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

var (
	ErrSatelliteNotFound = errors.New("satellite not found")
	ErrISLExists         = errors.New("ISL already exists")
	ErrISLNotFound       = errors.New("ISL not found")
	ErrBadISLWeight      = errors.New("invalid ISL weight")
)

// IfaceKey identifies one directed endpoint of an ISL.
type IfaceKey struct {
	From int
	To   int
}

// Topology is a per-timestep snapshot of the constellation's link state:
// the weighted undirected ISL graph, the per-directed-endpoint interface
// map and the participating satellites and ground stations.
//
// Invariant: if (a,b) is an edge then both (a,b) and (b,a) have interface
// indices. A missing index is a data-construction bug, not a routing
// failure; AddISL maintains the invariant by assigning indices in
// discovery order.
//
// A Topology is not safe for concurrent mutation; each timestep's
// computation owns its snapshot.
type Topology struct {
	adjacency  map[int]map[int]float64
	ifaceIndex map[IfaceKey]int

	satellites     map[int]*model.Satellite
	groundStations []*model.GroundStation

	// version increments whenever the graph changes, so callers can
	// detect "nothing changed since last tick" cheaply.
	version uint64
}

// NewTopology builds a topology over the given satellites and ground
// stations. Satellites start as isolated graph nodes.
func NewTopology(satellites []*model.Satellite, groundStations []*model.GroundStation) *Topology {
	t := &Topology{
		adjacency:      make(map[int]map[int]float64, len(satellites)),
		ifaceIndex:     make(map[IfaceKey]int),
		satellites:     make(map[int]*model.Satellite, len(satellites)),
		groundStations: groundStations,
	}
	for _, sat := range satellites {
		t.satellites[sat.ID] = sat
		t.adjacency[sat.ID] = make(map[int]float64)
	}
	return t
}

// AddISL connects two satellites with an undirected link of the given
// distance. Local interface indices are assigned on both endpoints in
// discovery order (0..NumberISLs-1).
func (t *Topology) AddISL(a, b int, distanceM float64) error {
	satA, okA := t.satellites[a]
	satB, okB := t.satellites[b]
	if !okA || !okB {
		return fmt.Errorf("%w: ISL (%d,%d)", ErrSatelliteNotFound, a, b)
	}
	if distanceM < 0 {
		return fmt.Errorf("%w: %f for ISL (%d,%d)", ErrBadISLWeight, distanceM, a, b)
	}
	if _, exists := t.adjacency[a][b]; exists {
		return fmt.Errorf("%w: (%d,%d)", ErrISLExists, a, b)
	}

	t.adjacency[a][b] = distanceM
	t.adjacency[b][a] = distanceM
	t.ifaceIndex[IfaceKey{From: a, To: b}] = satA.NumberISLs
	t.ifaceIndex[IfaceKey{From: b, To: a}] = satB.NumberISLs
	satA.NumberISLs++
	satB.NumberISLs++
	t.version++
	return nil
}

// SetISLWeight updates the distance of an existing ISL without touching
// interface assignments. Used when satellites move between ticks while
// the link set itself stays fixed.
func (t *Topology) SetISLWeight(a, b int, distanceM float64) error {
	if _, exists := t.adjacency[a][b]; !exists {
		return fmt.Errorf("%w: (%d,%d)", ErrISLNotFound, a, b)
	}
	if distanceM < 0 {
		return fmt.Errorf("%w: %f for ISL (%d,%d)", ErrBadISLWeight, distanceM, a, b)
	}
	if t.adjacency[a][b] != distanceM {
		t.adjacency[a][b] = distanceM
		t.adjacency[b][a] = distanceM
		t.version++
	}
	return nil
}

// Version returns a counter that changes whenever the graph changes.
func (t *Topology) Version() uint64 { return t.version }

// Satellite looks up a satellite by id.
func (t *Topology) Satellite(id int) (*model.Satellite, bool) {
	sat, ok := t.satellites[id]
	return sat, ok
}

// Satellites returns all satellites sorted by id.
func (t *Topology) Satellites() []*model.Satellite {
	out := make([]*model.Satellite, 0, len(t.satellites))
	for _, sat := range t.satellites {
		out = append(out, sat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GroundStations returns the ground-station list in input order.
func (t *Topology) GroundStations() []*model.GroundStation {
	return t.groundStations
}

// SatelliteNodeIDs returns the sorted ids of all satellite graph nodes.
// Sorting makes the id→index bijection used by matrix algorithms
// reproducible across runs over an unchanged graph.
func (t *Topology) SatelliteNodeIDs() []int {
	ids := make([]int, 0, len(t.adjacency))
	for id := range t.adjacency {
		if _, ok := t.satellites[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// HasNode reports whether a satellite id participates in the ISL graph.
func (t *Topology) HasNode(id int) bool {
	_, ok := t.adjacency[id]
	return ok
}

// Neighbors returns the ISL neighbors of a satellite, sorted by id.
func (t *Topology) Neighbors(id int) []int {
	edges, ok := t.adjacency[id]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(edges))
	for nb := range edges {
		out = append(out, nb)
	}
	sort.Ints(out)
	return out
}

// LinkWeight returns the ISL distance between two satellites.
func (t *Topology) LinkWeight(a, b int) (float64, bool) {
	w, ok := t.adjacency[a][b]
	return w, ok
}

// InterfaceIndex returns the local interface index on `from` used to
// reach `to`.
func (t *Topology) InterfaceIndex(from, to int) (int, bool) {
	idx, ok := t.ifaceIndex[IfaceKey{From: from, To: to}]
	return idx, ok
}
