package core

import (
	"context"

	"github.com/signalsfoundry/leo-routing-sim/internal/logging"
	"github.com/signalsfoundry/leo-routing-sim/model"
)

// NodePair keys a forwarding entry: the node currently holding the packet
// and the ultimate destination.
type NodePair struct {
	From int
	To   int
}

// Hop is the forwarding decision for a NodePair: the next-hop node plus
// the local and remote interface indices of the link to use.
//
// DropHop is the wire-compatible "no route" encoding; consumers must treat
// a missing entry identically to an explicit DropHop.
type Hop struct {
	NextHop  int
	LocalIf  int
	RemoteIf int
}

// DropHop is the sentinel forwarding decision meaning "no route, drop".
var DropHop = Hop{NextHop: -1, LocalIf: -1, RemoteIf: -1}

// IsDrop reports whether the hop is the drop sentinel.
func (h Hop) IsDrop() bool { return h == DropHop }

// ForwardingState maps (current node, destination) to the next-hop
// decision. Entries exist only for pairs actually evaluated; there is no
// implicit default route.
type ForwardingState map[NodePair]Hop

// NextHops projects the forwarding state down to a next-hop-only view,
// omitting drop entries. This is the shape consumed by path
// reconstruction.
func (f ForwardingState) NextHops() map[NodePair]int {
	out := make(map[NodePair]int, len(f))
	for pair, hop := range f {
		if hop.IsDrop() {
			continue
		}
		out[pair] = hop.NextHop
	}
	return out
}

// VisibleSatellite is one GSL candidate: a satellite currently within
// communication range of a ground station.
type VisibleSatellite struct {
	DistanceM   float64
	SatelliteID int
}

// VisibilityList holds GSL candidates per ground station, indexed by the
// ground station's position in the topology's ground-station slice. An
// entry may be empty (no visibility). The list may be shorter than the
// ground-station slice; resolvers skip the uncovered stations.
type VisibilityList [][]VisibleSatellite

// BandwidthState maps node id to its aggregate max bandwidth.
type BandwidthState map[int]float64

// ComputeBandwidthState derives the per-node bandwidth map from the
// externally supplied interface-info list. A short list is logged and
// zero-filled; processing continues for all other nodes.
func ComputeBandwidthState(
	ctx context.Context,
	numSatellites int,
	groundStations []*model.GroundStation,
	infos []model.InterfaceInfo,
	log logging.Logger,
) BandwidthState {
	if log == nil {
		log = logging.Noop()
	}

	numTotal := numSatellites + len(groundStations)
	if len(infos) != numTotal {
		log.Warn(ctx, "interface info list length mismatch",
			logging.Int("infos", len(infos)),
			logging.Int("total_nodes", numTotal),
		)
	}

	state := make(BandwidthState, numTotal)
	for i := 0; i < numTotal; i++ {
		if i < len(infos) {
			state[infos[i].ID] = infos[i].AggregateMaxBandwidth
			continue
		}
		state[i] = 0.0
		log.Error(ctx, "interface info missing, zero-filling bandwidth",
			logging.Int("node_id", i),
		)
	}
	return state
}
