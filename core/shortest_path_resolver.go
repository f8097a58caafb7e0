package core

import (
	"context"
	"math"
	"sort"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
)

// ShortestPathResolver computes forwarding state by shortest physical
// distance over ISLs only; ground stations are always a source or a
// destination, never a relay.
type ShortestPathResolver struct {
	log logging.Logger
}

// NewShortestPathResolver constructs a resolver. A nil logger is replaced
// with a noop logger.
func NewShortestPathResolver(log logging.Logger) *ShortestPathResolver {
	if log == nil {
		log = logging.Noop()
	}
	return &ShortestPathResolver{log: log}
}

// candidate pairs a total route distance with the exit/entry satellite
// achieving it.
type candidate struct {
	totalM      float64
	satelliteID int
}

// Compute resolves the full forwarding state for one timestep: every
// (satellite, ground station) pair and every ordered (ground station,
// ground station) pair. An empty or malformed ISL graph yields an empty
// state; callers treat that as "no update this tick".
func (r *ShortestPathResolver) Compute(ctx context.Context, topo *Topology, visibility VisibilityList) ForwardingState {
	ids := topo.SatelliteNodeIDs()
	if len(ids) == 0 {
		r.log.Warn(ctx, "no satellite nodes in ISL graph, skipping fstate computation")
		return ForwardingState{}
	}

	matrix, err := ComputeAPSP(topo)
	if err != nil {
		r.log.Error(ctx, "all-pairs shortest path computation failed",
			logging.String("error", err.Error()),
		)
		return ForwardingState{}
	}

	fstate := make(ForwardingState)
	// Sat→GS total distances, reused by the GS→GS phase so entry
	// candidates do not trigger a second resolution pass.
	satToGSDistM := make(map[NodePair]float64)

	r.computeSatToGS(ctx, topo, visibility, ids, matrix, satToGSDistM, fstate)
	r.computeGSToGS(ctx, topo, visibility, matrix, satToGSDistM, fstate)

	r.log.Debug(ctx, "computed forwarding state", logging.Int("entries", len(fstate)))
	return fstate
}

func (r *ShortestPathResolver) computeSatToGS(
	ctx context.Context,
	topo *Topology,
	visibility VisibilityList,
	ids []int,
	matrix *DistanceMatrix,
	satToGSDistM map[NodePair]float64,
	fstate ForwardingState,
) {
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
			candidates := exitCandidates(visibility[gsIdx], satID, matrix)

			hop, distanceM := r.nextHopDecision(ctx, candidates, satID, gs.ID, topo, matrix)
			satToGSDistM[NodePair{From: satID, To: gs.ID}] = distanceM
			fstate[NodePair{From: satID, To: gs.ID}] = hop
		}
	}
}

// exitCandidates filters a ground station's visibility list down to exit
// satellites reachable from the current satellite and orders them by
// total distance (ISL path + GSL hop). Ties resolve to the lower
// satellite id, making the decision deterministic.
func exitCandidates(visible []VisibleSatellite, currSatID int, matrix *DistanceMatrix) []candidate {
	candidates := make([]candidate, 0, len(visible))
	for _, vs := range visible {
		if !matrix.Contains(vs.SatelliteID) {
			continue
		}
		distM, _ := matrix.Distance(currSatID, vs.SatelliteID)
		if math.IsInf(distM, 1) {
			continue
		}
		candidates = append(candidates, candidate{
			totalM:      distM + vs.DistanceM,
			satelliteID: vs.SatelliteID,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].totalM != candidates[j].totalM {
			return candidates[i].totalM < candidates[j].totalM
		}
		return candidates[i].satelliteID < candidates[j].satelliteID
	})
	return candidates
}

// nextHopDecision resolves the concrete hop for a satellite toward a
// ground station given the ordered exit candidates. It returns the hop
// plus the total distance, +Inf when no candidate exists.
func (r *ShortestPathResolver) nextHopDecision(
	ctx context.Context,
	candidates []candidate,
	currSatID int,
	gsID int,
	topo *Topology,
	matrix *DistanceMatrix,
) (Hop, float64) {
	if len(candidates) == 0 {
		return DropHop, math.Inf(1)
	}

	best := candidates[0]
	if currSatID == best.satelliteID {
		return r.directGSLHop(ctx, best.satelliteID, gsID, topo), best.totalM
	}
	return r.multiHopISL(ctx, currSatID, best.satelliteID, topo, matrix), best.totalM
}

// directGSLHop is the decision when the current satellite itself is the
// exit: next hop is the ground station, the GSL interface sits right
// after the ISL interfaces, and the ground-station side always uses its
// single default incoming interface 0.
func (r *ShortestPathResolver) directGSLHop(ctx context.Context, satID, gsID int, topo *Topology) Hop {
	sat, ok := topo.Satellite(satID)
	if !ok {
		r.log.Error(ctx, "exit satellite missing from topology",
			logging.Int("satellite_id", satID),
			logging.Int("ground_station_id", gsID),
		)
		return DropHop
	}
	return Hop{NextHop: gsID, LocalIf: sat.GSLInterfaceIndex(), RemoteIf: 0}
}

// multiHopISL picks the ISL neighbor minimizing link weight plus the
// remaining shortest-path distance to the exit satellite. If no neighbor
// can reach the exit the decision degrades to the drop sentinel.
func (r *ShortestPathResolver) multiHopISL(
	ctx context.Context,
	currSatID int,
	exitSatID int,
	topo *Topology,
	matrix *DistanceMatrix,
) Hop {
	hop := DropHop
	bestM := math.Inf(1)

	for _, nb := range topo.Neighbors(currSatID) {
		if !matrix.Contains(nb) {
			continue
		}
		weight, ok := topo.LinkWeight(currSatID, nb)
		if !ok {
			r.log.Warn(ctx, "missing ISL weight",
				logging.Int("satellite_id", currSatID),
				logging.Int("neighbor_id", nb),
			)
			continue
		}
		remainingM, _ := matrix.Distance(nb, exitSatID)
		if math.IsInf(remainingM, 1) {
			continue
		}
		if totalM := weight + remainingM; totalM < bestM {
			localIf, okLocal := topo.InterfaceIndex(currSatID, nb)
			remoteIf, okRemote := topo.InterfaceIndex(nb, currSatID)
			if !okLocal || !okRemote {
				// Interface map invariant violated: keep the -1 index
				// on the wire but flag the data bug loudly.
				r.log.Warn(ctx, "missing ISL interface mapping",
					logging.Int("satellite_id", currSatID),
					logging.Int("neighbor_id", nb),
				)
				localIf, remoteIf = orMinusOne(localIf, okLocal), orMinusOne(remoteIf, okRemote)
			}
			hop = Hop{NextHop: nb, LocalIf: localIf, RemoteIf: remoteIf}
			bestM = totalM
		}
	}
	return hop
}

func (r *ShortestPathResolver) computeGSToGS(
	ctx context.Context,
	topo *Topology,
	visibility VisibilityList,
	matrix *DistanceMatrix,
	satToGSDistM map[NodePair]float64,
	fstate ForwardingState,
) {
	stations := topo.GroundStations()
	for srcIdx, src := range stations {
		for dstIdx, dst := range stations {
			if srcIdx == dstIdx {
				continue
			}
			if srcIdx >= len(visibility) {
				r.log.Warn(ctx, "visibility list shorter than ground station list",
					logging.Int("ground_station_id", src.ID),
					logging.Int("index", srcIdx),
				)
				continue
			}

			candidates := make([]candidate, 0, len(visibility[srcIdx]))
			for _, vs := range visibility[srcIdx] {
				if !matrix.Contains(vs.SatelliteID) {
					continue
				}
				entryToDstM, ok := satToGSDistM[NodePair{From: vs.SatelliteID, To: dst.ID}]
				if !ok || math.IsInf(entryToDstM, 1) {
					continue
				}
				candidates = append(candidates, candidate{
					totalM:      vs.DistanceM + entryToDstM,
					satelliteID: vs.SatelliteID,
				})
			}
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].totalM != candidates[j].totalM {
					return candidates[i].totalM < candidates[j].totalM
				}
				return candidates[i].satelliteID < candidates[j].satelliteID
			})

			hop := DropHop
			if len(candidates) > 0 {
				entrySatID := candidates[0].satelliteID
				if entrySat, ok := topo.Satellite(entrySatID); ok {
					hop = Hop{NextHop: entrySatID, LocalIf: 0, RemoteIf: entrySat.GSLInterfaceIndex()}
				} else {
					r.log.Error(ctx, "entry satellite missing from topology",
						logging.Int("satellite_id", entrySatID),
						logging.Int("ground_station_id", src.ID),
					)
				}
			}
			fstate[NodePair{From: src.ID, To: dst.ID}] = hop
		}
	}
}

func orMinusOne(v int, ok bool) int {
	if !ok {
		return -1
	}
	return v
}
