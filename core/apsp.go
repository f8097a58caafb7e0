package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedGraph reports an ISL graph the shortest-path engine cannot
// process. Resolvers treat it as "no recompute this tick" and return an
// empty forwarding state.
var ErrMalformedGraph = errors.New("malformed ISL graph")

// DistanceMatrix is the dense all-pairs shortest-path result over the
// satellite-only subgraph. It is computed once per timestep and discarded
// after the forwarding pass; ground stations are never intermediate hops
// and therefore never appear in it.
type DistanceMatrix struct {
	ids   []int
	index map[int]int
	dist  [][]float64
}

// ComputeAPSP runs Floyd–Warshall over the satellite-only subgraph.
// Distances are metres; unreachable pairs stay +Inf. An empty graph
// yields an empty matrix, not an error. The id→index bijection is built
// from the ascending-sorted node id set, so repeated runs over an
// unchanged graph are bit-reproducible.
func ComputeAPSP(t *Topology) (*DistanceMatrix, error) {
	ids := t.SatelliteNodeIDs()
	n := len(ids)

	m := &DistanceMatrix{
		ids:   ids,
		index: make(map[int]int, n),
	}
	for i, id := range ids {
		m.index[id] = i
	}

	dist := make([][]float64, n)
	for i := range dist {
		row := make([]float64, n)
		for j := range row {
			if i == j {
				continue
			}
			row[j] = math.Inf(1)
		}
		dist[i] = row
	}

	for i, a := range ids {
		for b, w := range t.adjacency[a] {
			j, ok := m.index[b]
			if !ok {
				// Edge endpoint missing from the satellite set.
				return nil, fmt.Errorf("%w: edge (%d,%d) references unknown node", ErrMalformedGraph, a, b)
			}
			if w < 0 || math.IsNaN(w) {
				return nil, fmt.Errorf("%w: edge (%d,%d) has weight %f", ErrMalformedGraph, a, b, w)
			}
			if w < dist[i][j] {
				dist[i][j] = w
			}
		}
	}

	// Classic O(V^3) relaxation. Distances through unreachable regions
	// stay infinite; weights are non-negative physical distances so no
	// negative cycles can occur.
	for k := 0; k < n; k++ {
		dk := dist[k]
		for i := 0; i < n; i++ {
			dik := dist[i][k]
			if math.IsInf(dik, 1) {
				continue
			}
			di := dist[i]
			for j := 0; j < n; j++ {
				if via := dik + dk[j]; via < di[j] {
					di[j] = via
				}
			}
		}
	}

	m.dist = dist
	return m, nil
}

// Len returns the number of satellite nodes covered by the matrix.
func (m *DistanceMatrix) Len() int { return len(m.ids) }

// Contains reports whether the node id participates in the matrix.
func (m *DistanceMatrix) Contains(id int) bool {
	_, ok := m.index[id]
	return ok
}

// Distance returns the shortest-path distance between two satellites by
// node id. The second result is false when either id is not part of the
// satellite subgraph.
func (m *DistanceMatrix) Distance(a, b int) (float64, bool) {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if !okA || !okB {
		return math.Inf(1), false
	}
	return m.dist[i][j], true
}
