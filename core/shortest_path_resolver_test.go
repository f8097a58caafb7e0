package core

import (
	"context"
	"testing"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

func newTestGroundStations(ids ...int) []*model.GroundStation {
	out := make([]*model.GroundStation, 0, len(ids))
	for _, id := range ids {
		out = append(out, &model.GroundStation{ID: id})
	}
	return out
}

// chainScenario builds the canonical four-satellite chain with
// non-sequential ids, one ground station parked under each satellite:
//
//	GS100 - sat10 - sat20 - sat30 - sat40 - GS400
//	                 |        |
//	               GS200    GS300
func chainScenario(t *testing.T) (*Topology, VisibilityList) {
	t.Helper()
	topo := NewTopology(newTestSatellites(10, 20, 30, 40), newTestGroundStations(100, 200, 300, 400))
	mustAddISL(t, topo, 10, 20, 1000e3)
	mustAddISL(t, topo, 20, 30, 1000e3)
	mustAddISL(t, topo, 30, 40, 1000e3)

	visibility := VisibilityList{
		{{DistanceM: 600e3, SatelliteID: 10}},
		{{DistanceM: 600e3, SatelliteID: 20}},
		{{DistanceM: 600e3, SatelliteID: 30}},
		{{DistanceM: 600e3, SatelliteID: 40}},
	}
	return topo, visibility
}

func TestShortestPathChainEndToEnd(t *testing.T) {
	topo, visibility := chainScenario(t)
	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)

	// Satellite 10 reaches GS 400 by walking the chain; every hop uses
	// the ISL interface toward the next satellite.
	cases := []struct {
		from, to int
		want     Hop
	}{
		{10, 400, Hop{NextHop: 20, LocalIf: 0, RemoteIf: 0}},
		{20, 400, Hop{NextHop: 30, LocalIf: 1, RemoteIf: 0}},
		{30, 400, Hop{NextHop: 40, LocalIf: 1, RemoteIf: 0}},
		// Satellite 40 is the exit: GSL interface comes after its one ISL.
		{40, 400, Hop{NextHop: 400, LocalIf: 1, RemoteIf: 0}},
		// Reverse direction toward GS 100 under satellite 10.
		{40, 100, Hop{NextHop: 30, LocalIf: 0, RemoteIf: 1}},
		{10, 100, Hop{NextHop: 100, LocalIf: 1, RemoteIf: 0}},
	}
	for _, tc := range cases {
		got, ok := fstate[NodePair{From: tc.from, To: tc.to}]
		if !ok {
			t.Errorf("missing entry (%d -> %d)", tc.from, tc.to)
			continue
		}
		if got != tc.want {
			t.Errorf("entry (%d -> %d) = %+v, want %+v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestShortestPathGSToGSUsesBestEntrySatellite(t *testing.T) {
	topo, visibility := chainScenario(t)
	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)

	// GS 100 only sees satellite 10, so it must enter there; the
	// ground-station side always receives on interface 0 and the
	// satellite receives on its GSL interface.
	sat10, _ := topo.Satellite(10)
	got, ok := fstate[NodePair{From: 100, To: 400}]
	if !ok {
		t.Fatal("missing entry (100 -> 400)")
	}
	want := Hop{NextHop: 10, LocalIf: 0, RemoteIf: sat10.GSLInterfaceIndex()}
	if got != want {
		t.Fatalf("entry (100 -> 400) = %+v, want %+v", got, want)
	}

	// Ordered pairs are independent decisions.
	if _, ok := fstate[NodePair{From: 400, To: 100}]; !ok {
		t.Error("missing reverse entry (400 -> 100)")
	}
	if _, ok := fstate[NodePair{From: 100, To: 100}]; ok {
		t.Error("unexpected self entry (100 -> 100)")
	}
}

func TestShortestPathNoVisibilityYieldsDrop(t *testing.T) {
	topo := NewTopology(newTestSatellites(0, 1), newTestGroundStations(100, 200))
	mustAddISL(t, topo, 0, 1, 1000e3)
	// GS 100 sees satellite 0; GS 200 sees nothing.
	visibility := VisibilityList{
		{{DistanceM: 600e3, SatelliteID: 0}},
		{},
	}
	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)

	for _, satID := range []int{0, 1} {
		got, ok := fstate[NodePair{From: satID, To: 200}]
		if !ok {
			t.Fatalf("missing entry (%d -> 200)", satID)
		}
		if !got.IsDrop() {
			t.Errorf("entry (%d -> 200) = %+v, want drop sentinel", satID, got)
		}
	}
	if got := fstate[NodePair{From: 200, To: 100}]; !got.IsDrop() {
		t.Errorf("entry (200 -> 100) = %+v, want drop sentinel", got)
	}
}

func TestShortestPathPrefersLighterDetour(t *testing.T) {
	// Triangle: the direct 0-2 ISL is heavier than going through 1, so
	// packets from 0 toward the GS over satellite 2 take the detour.
	topo := NewTopology(newTestSatellites(0, 1, 2), newTestGroundStations(100))
	mustAddISL(t, topo, 0, 1, 1000e3)
	mustAddISL(t, topo, 1, 2, 1000e3)
	mustAddISL(t, topo, 0, 2, 5000e3)
	visibility := VisibilityList{{{DistanceM: 600e3, SatelliteID: 2}}}

	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)
	got := fstate[NodePair{From: 0, To: 100}]
	if got.NextHop != 1 {
		t.Fatalf("entry (0 -> 100) next hop = %d, want detour via 1", got.NextHop)
	}
}

func TestShortestPathTieBreaksOnLowerSatelliteID(t *testing.T) {
	// Two exit satellites at identical total distance from satellite 0.
	topo := NewTopology(newTestSatellites(0, 1, 2), newTestGroundStations(100))
	mustAddISL(t, topo, 0, 1, 1000e3)
	mustAddISL(t, topo, 0, 2, 1000e3)
	visibility := VisibilityList{{
		{DistanceM: 600e3, SatelliteID: 2},
		{DistanceM: 600e3, SatelliteID: 1},
	}}

	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)
	got := fstate[NodePair{From: 0, To: 100}]
	if got.NextHop != 1 {
		t.Fatalf("entry (0 -> 100) next hop = %d, want lower-id exit 1", got.NextHop)
	}
}

func TestShortestPathNonSequentialIDsPartialVisibility(t *testing.T) {
	// Same chain, but GS 100 is only visible from satellite 20 and GS 400
	// sees nothing at all.
	topo := NewTopology(newTestSatellites(10, 20, 30, 40), newTestGroundStations(100, 200, 300, 400))
	mustAddISL(t, topo, 10, 20, 1000e3)
	mustAddISL(t, topo, 20, 30, 1000e3)
	mustAddISL(t, topo, 30, 40, 1000e3)
	visibility := VisibilityList{
		{{DistanceM: 600e3, SatelliteID: 20}},
		{{DistanceM: 600e3, SatelliteID: 20}},
		{{DistanceM: 600e3, SatelliteID: 30}},
		{},
	}

	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)

	// Satellite 10 reaches GS 100 through its only neighbor 20.
	if got := fstate[NodePair{From: 10, To: 100}]; got.NextHop != 20 {
		t.Errorf("entry (10 -> 100) = %+v, want next hop 20", got)
	}
	// GS 400 is invisible everywhere, so every satellite drops toward it.
	for _, satID := range []int{10, 20, 30, 40} {
		if got := fstate[NodePair{From: satID, To: 400}]; !got.IsDrop() {
			t.Errorf("entry (%d -> 400) = %+v, want drop sentinel", satID, got)
		}
	}
}

func TestShortestPathLineVaryingVisibility(t *testing.T) {
	// Four satellites in a line; GS 102 (index 2) is visible from
	// satellite 2 only and GS 103 (index 3) from nobody.
	topo := NewTopology(newTestSatellites(0, 1, 2, 3), newTestGroundStations(100, 101, 102, 103))
	mustAddISL(t, topo, 0, 1, 1000e3)
	mustAddISL(t, topo, 1, 2, 1000e3)
	mustAddISL(t, topo, 2, 3, 1000e3)
	visibility := VisibilityList{
		{{DistanceM: 600e3, SatelliteID: 0}},
		{{DistanceM: 600e3, SatelliteID: 1}},
		{{DistanceM: 600e3, SatelliteID: 2}},
		{},
	}

	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)

	if got := fstate[NodePair{From: 0, To: 103}]; !got.IsDrop() {
		t.Errorf("entry (0 -> 103) = %+v, want drop sentinel", got)
	}
	// Satellite 1 one-hop toward GS 102's exit satellite 2: local
	// interface on 1 toward 2 is its second ISL, remote side is 2's
	// first.
	want := Hop{NextHop: 2, LocalIf: 1, RemoteIf: 0}
	if got := fstate[NodePair{From: 1, To: 102}]; got != want {
		t.Errorf("entry (1 -> 102) = %+v, want %+v", got, want)
	}
}

func TestShortestPathEmptyGraphYieldsEmptyState(t *testing.T) {
	topo := NewTopology(nil, newTestGroundStations(100))
	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, VisibilityList{{}})
	if len(fstate) != 0 {
		t.Fatalf("fstate has %d entries, want 0", len(fstate))
	}
}

func TestShortestPathVisibilityShorterThanStations(t *testing.T) {
	topo := NewTopology(newTestSatellites(0), newTestGroundStations(100, 200))
	visibility := VisibilityList{{{DistanceM: 600e3, SatelliteID: 0}}}

	fstate := NewShortestPathResolver(nil).Compute(context.Background(), topo, visibility)
	if _, ok := fstate[NodePair{From: 0, To: 100}]; !ok {
		t.Error("missing entry for covered ground station")
	}
	if _, ok := fstate[NodePair{From: 0, To: 200}]; ok {
		t.Error("unexpected entry for ground station beyond visibility list")
	}
}
