package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

func TestVisibilityBuilderFiltersAndSorts(t *testing.T) {
	gs := &model.GroundStation{ID: 100, X: EarthRadiusM, Y: 0, Z: 0}
	topo := NewTopology(newTestSatellites(0, 1, 2, 3), []*model.GroundStation{gs})

	positions := map[int]Vec3{
		// Almost overhead, slight tangential offset keeps elevation high.
		0: {X: EarthRadiusM + 550e3, Y: 50e3, Z: 0},
		// Higher up, still visible but farther.
		1: {X: EarthRadiusM + 1200e3, Y: 50e3, Z: 0},
		// Opposite side of the Earth: occluded.
		2: {X: -(EarthRadiusM + 550e3), Y: 0, Z: 0},
		// Visible geometry but beyond the GSL range limit.
		3: {X: EarthRadiusM + 3000e3, Y: 0, Z: 0},
	}

	builder := VisibilityBuilder{MaxGSLLengthM: 2000e3, MinElevationDeg: 25}
	list := builder.Build(topo, positions)

	if len(list) != 1 {
		t.Fatalf("visibility list has %d entries, want 1", len(list))
	}
	visible := list[0]
	if len(visible) != 2 {
		t.Fatalf("GS 100 sees %d satellites, want 2 (got %v)", len(visible), visible)
	}
	if visible[0].SatelliteID != 0 || visible[1].SatelliteID != 1 {
		t.Errorf("visibility order = %v, want satellite 0 then 1 by distance", visible)
	}
	if visible[0].DistanceM >= visible[1].DistanceM {
		t.Errorf("distances not ascending: %v", visible)
	}
}

func TestVisibilityBuilderElevationMask(t *testing.T) {
	gs := &model.GroundStation{ID: 100, X: EarthRadiusM, Y: 0, Z: 0}
	topo := NewTopology(newTestSatellites(0), []*model.GroundStation{gs})

	// Low on the horizon: large tangential offset, little altitude.
	positions := map[int]Vec3{0: {X: EarthRadiusM + 100e3, Y: 1500e3, Z: 0}}

	strict := VisibilityBuilder{MinElevationDeg: 25}
	if list := strict.Build(topo, positions); len(list[0]) != 0 {
		t.Errorf("satellite below elevation mask reported visible: %v", list[0])
	}

	lenient := VisibilityBuilder{MinElevationDeg: 0}
	if list := lenient.Build(topo, positions); len(list[0]) != 1 {
		t.Errorf("satellite above horizon not visible with zero mask: %v", list[0])
	}
}

func TestGeometricVisibilityProvider(t *testing.T) {
	gs := &model.GroundStation{ID: 100, X: EarthRadiusM, Y: 0, Z: 0}
	sats := newTestSatellites(0)
	topo := NewTopology(sats, []*model.GroundStation{gs})
	motion := map[int]MotionModel{
		0: &StaticMotionModel{Position: Vec3{X: EarthRadiusM + 550e3, Y: 10e3, Z: 0}},
	}

	provider := &GeometricVisibility{
		Topology: topo,
		Builder:  VisibilityBuilder{MaxGSLLengthM: 1000e3, MinElevationDeg: 25},
		Motion:   motion,
	}
	list := provider.Visibility(time.Now())
	if len(list) != 1 || len(list[0]) != 1 || list[0][0].SatelliteID != 0 {
		t.Fatalf("visibility = %v, want satellite 0 visible from GS 100", list)
	}
}

func TestSatellitePositionsSkipsMissingModels(t *testing.T) {
	sats := newTestSatellites(0, 1)
	motion := map[int]MotionModel{0: &StaticMotionModel{Position: Vec3{X: 1}}}

	positions := SatellitePositions(sats, motion, time.Now())
	if len(positions) != 1 {
		t.Fatalf("positions has %d entries, want 1", len(positions))
	}
	if _, ok := positions[1]; ok {
		t.Error("satellite without motion model should be omitted")
	}
}
