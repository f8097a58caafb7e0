package core

import (
	"context"
	"math"
	"sort"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
)

// TopologicalEntry is the forwarding decision of the addressing-based
// scheme. Either the satellite reaches the ground station directly over
// its own GSL (Direct, paired with the ground-station id), or it forwards
// over the ISL interface toward the first hop of the shortest path to the
// chosen exit satellite.
type TopologicalEntry struct {
	Direct          bool
	GroundStationID int
	LocalIf         int
}

// TopologicalState maps (satellite, ground station) to the topological
// forwarding decision. Absence of a key means drop; the scheme never
// records explicit drop entries. GS→GS pairs are not computed by this
// algorithm.
type TopologicalState map[NodePair]TopologicalEntry

// TopologicalResolver implements the addressing-based routing scheme:
// hierarchical addresses assigned once at t=0, per-satellite neighbor
// forwarding tables keyed by serialized address, and reuse of the
// previous tick's state while the graph is unchanged.
type TopologicalResolver struct {
	log logging.Logger
}

// NewTopologicalResolver constructs a resolver. A nil logger is replaced
// with a noop logger.
func NewTopologicalResolver(log logging.Logger) *TopologicalResolver {
	if log == nil {
		log = logging.Noop()
	}
	return &TopologicalResolver{log: log}
}

// TopologicalResult carries the computed state plus a flag telling the
// caller whether the previous state was reused verbatim. On a cache hit
// State is the same map value that was passed in as prev, so the "no
// recomputation" cost guarantee holds without a deep copy.
type TopologicalResult struct {
	State    TopologicalState
	CacheHit bool
}

// Compute resolves sat→GS topological forwarding state for one timestep.
//
// At sinceEpochNs == 0 every satellite gets its hierarchical address and
// its neighbor forwarding table, and recomputation is forced regardless
// of graphChanged. On later ticks with graphChanged == false and a
// previous state supplied, the previous state is returned unchanged.
func (r *TopologicalResolver) Compute(
	ctx context.Context,
	topo *Topology,
	visibility VisibilityList,
	sinceEpochNs int64,
	prev TopologicalState,
	graphChanged bool,
) TopologicalResult {
	ids := topo.SatelliteNodeIDs()
	if len(ids) == 0 {
		r.log.Warn(ctx, "no satellite nodes in ISL graph, skipping topological fstate computation")
		return TopologicalResult{State: TopologicalState{}}
	}

	if sinceEpochNs == 0 {
		r.assignAddresses(ctx, topo)
		r.fillForwardingTables(ctx, topo, ids)
		graphChanged = true
	}

	if !graphChanged && prev != nil {
		r.log.Debug(ctx, "graph unchanged, reusing previous topological fstate")
		return TopologicalResult{State: prev, CacheHit: true}
	}

	// Renumbering hook: invoked for every ground station with current
	// visibility. Address reassignment on GSL churn is intentionally
	// unimplemented; the hook preserves the call site.
	for gsIdx, gs := range topo.GroundStations() {
		if gsIdx < len(visibility) && len(visibility[gsIdx]) > 0 {
			r.renumberGroundStation(ctx, gs, visibility[gsIdx])
		}
	}

	return TopologicalResult{State: r.computeSatToGS(ctx, topo, visibility, ids)}
}

// assignAddresses gives every satellite its single-shell hierarchical
// address. Failures are logged per satellite and skipped.
func (r *TopologicalResolver) assignAddresses(ctx context.Context, topo *Topology) {
	for _, sat := range topo.Satellites() {
		addr, err := model.NewSatelliteAddress(sat.ID)
		if err != nil {
			r.log.Error(ctx, "failed to assign topological address",
				logging.Int("satellite_id", sat.ID),
				logging.String("error", err.Error()),
			)
			continue
		}
		sat.Addr = &addr
	}
}

// fillForwardingTables maps every ISL neighbor's serialized address to
// the local interface used to reach it.
func (r *TopologicalResolver) fillForwardingTables(ctx context.Context, topo *Topology, ids []int) {
	for _, satID := range ids {
		sat, ok := topo.Satellite(satID)
		if !ok {
			continue
		}
		for _, nb := range topo.Neighbors(satID) {
			iface, okIface := topo.InterfaceIndex(satID, nb)
			if !okIface {
				r.log.Warn(ctx, "missing ISL interface mapping for forwarding table",
					logging.Int("satellite_id", satID),
					logging.Int("neighbor_id", nb),
				)
				continue
			}
			addr, okAddr := sat.NeighborAddress(nb)
			if !okAddr {
				continue
			}
			sat.ForwardingTable[addr.ToInteger()] = iface
		}
	}
}

// renumberGroundStation is the hook for re-addressing on GSL churn.
// Intended behavior is unspecified upstream; the hook only records that
// it fired.
func (r *TopologicalResolver) renumberGroundStation(ctx context.Context, gs *model.GroundStation, visible []VisibleSatellite) {
	r.log.Debug(ctx, "renumbering hook invoked",
		logging.Int("ground_station_id", gs.ID),
		logging.Int("visible_satellites", len(visible)),
	)
}

func (r *TopologicalResolver) computeSatToGS(
	ctx context.Context,
	topo *Topology,
	visibility VisibilityList,
	ids []int,
) TopologicalState {
	matrix, err := ComputeAPSP(topo)
	if err != nil {
		// Degraded mode: without the distance matrix only direct GSL
		// decisions can be made.
		r.log.Error(ctx, "shortest path computation failed, using direct-GSL-only routing",
			logging.String("error", err.Error()),
		)
		matrix = nil
	}

	state := make(TopologicalState)
	for _, satID := range ids {
		if _, ok := topo.Satellite(satID); !ok {
			r.log.Error(ctx, "satellite in graph but missing from topology",
				logging.Int("satellite_id", satID),
			)
			continue
		}

		for gsIdx, gs := range topo.GroundStations() {
			if gsIdx >= len(visibility) {
				continue
			}
			candidates := topologicalCandidates(visibility[gsIdx], satID, matrix)
			entry, ok := r.resolveEntry(ctx, candidates, satID, gs.ID, topo)
			if ok {
				state[NodePair{From: satID, To: gs.ID}] = entry
			}
		}
	}
	return state
}

// topologicalCandidates orders the reachable exit satellites by total
// distance. Without a distance matrix only the satellite's own GSL
// qualifies.
func topologicalCandidates(visible []VisibleSatellite, currSatID int, matrix *DistanceMatrix) []candidate {
	candidates := make([]candidate, 0, len(visible))
	for _, vs := range visible {
		if matrix == nil {
			if vs.SatelliteID == currSatID {
				candidates = append(candidates, candidate{totalM: vs.DistanceM, satelliteID: vs.SatelliteID})
			}
			continue
		}
		if !matrix.Contains(vs.SatelliteID) {
			continue
		}
		distM, _ := matrix.Distance(currSatID, vs.SatelliteID)
		if math.IsInf(distM, 1) {
			continue
		}
		candidates = append(candidates, candidate{totalM: distM + vs.DistanceM, satelliteID: vs.SatelliteID})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].totalM != candidates[j].totalM {
			return candidates[i].totalM < candidates[j].totalM
		}
		return candidates[i].satelliteID < candidates[j].satelliteID
	})
	return candidates
}

// resolveEntry turns the best candidate into a topological decision:
// direct GSL when the current satellite is the exit, otherwise the local
// ISL interface toward the first hop of the shortest path to the exit.
// The second result is false when no entry should be recorded
// (absence = drop).
func (r *TopologicalResolver) resolveEntry(
	ctx context.Context,
	candidates []candidate,
	currSatID int,
	gsID int,
	topo *Topology,
) (TopologicalEntry, bool) {
	if len(candidates) == 0 {
		return TopologicalEntry{}, false
	}

	best := candidates[0]
	if best.satelliteID == currSatID {
		return TopologicalEntry{Direct: true, GroundStationID: gsID}, true
	}

	path := ShortestPath(topo, currSatID, best.satelliteID)
	if len(path) < 2 {
		r.log.Warn(ctx, "no usable ISL path to exit satellite",
			logging.Int("satellite_id", currSatID),
			logging.Int("exit_satellite_id", best.satelliteID),
		)
		return TopologicalEntry{}, false
	}

	iface, ok := topo.InterfaceIndex(currSatID, path[1])
	if !ok {
		r.log.Warn(ctx, "missing ISL interface toward first hop",
			logging.Int("satellite_id", currSatID),
			logging.Int("next_hop_id", path[1]),
		)
		return TopologicalEntry{}, false
	}
	return TopologicalEntry{LocalIf: iface}, true
}
