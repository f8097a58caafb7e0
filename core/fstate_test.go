package core

import (
	"context"
	"testing"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

func TestNextHopsOmitsDropEntries(t *testing.T) {
	fstate := ForwardingState{
		{From: 0, To: 100}: {NextHop: 1, LocalIf: 0, RemoteIf: 0},
		{From: 1, To: 100}: DropHop,
	}

	next := fstate.NextHops()
	if len(next) != 1 {
		t.Fatalf("NextHops has %d entries, want 1", len(next))
	}
	if next[NodePair{From: 0, To: 100}] != 1 {
		t.Errorf("next hop for (0 -> 100) = %d, want 1", next[NodePair{From: 0, To: 100}])
	}
}

func TestHopIsDrop(t *testing.T) {
	if !DropHop.IsDrop() {
		t.Error("DropHop.IsDrop() = false")
	}
	if (Hop{NextHop: -1, LocalIf: 0, RemoteIf: -1}).IsDrop() {
		t.Error("partial sentinel reported as drop")
	}
}

func TestComputeBandwidthState(t *testing.T) {
	stations := newTestGroundStations(2, 3)
	infos := []model.InterfaceInfo{
		{ID: 0, AggregateMaxBandwidth: 10e9},
		{ID: 1, AggregateMaxBandwidth: 10e9},
		{ID: 2, AggregateMaxBandwidth: 40e9},
		{ID: 3, AggregateMaxBandwidth: 40e9},
	}

	state := ComputeBandwidthState(context.Background(), 2, stations, infos, nil)
	if len(state) != 4 {
		t.Fatalf("bandwidth state has %d entries, want 4", len(state))
	}
	if state[0] != 10e9 || state[2] != 40e9 {
		t.Errorf("bandwidth state = %v", state)
	}
}

func TestComputeBandwidthStateShortListZeroFills(t *testing.T) {
	stations := newTestGroundStations(2)
	infos := []model.InterfaceInfo{{ID: 0, AggregateMaxBandwidth: 10e9}}

	state := ComputeBandwidthState(context.Background(), 2, stations, infos, nil)
	if len(state) != 3 {
		t.Fatalf("bandwidth state has %d entries, want 3", len(state))
	}
	if state[0] != 10e9 {
		t.Errorf("node 0 bandwidth = %v, want 10e9", state[0])
	}
	for _, id := range []int{1, 2} {
		if got, ok := state[id]; !ok || got != 0 {
			t.Errorf("node %d bandwidth = %v, %v; want zero-filled", id, got, ok)
		}
	}
}
