package core

import (
	"sort"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// VisibilityBuilder derives per-ground-station GSL candidate lists from
// node positions. A satellite is a candidate when it is within the
// maximum GSL length, above the minimum elevation, and not occluded by
// the Earth.
type VisibilityBuilder struct {
	MaxGSLLengthM   float64
	MinElevationDeg float64
}

// Build produces the visibility list for the topology's ground stations
// given current satellite positions. Candidates are sorted by distance
// (then id) so downstream tie-breaks are deterministic.
func (b VisibilityBuilder) Build(topo *Topology, positions map[int]Vec3) VisibilityList {
	stations := topo.GroundStations()
	out := make(VisibilityList, len(stations))

	for gsIdx, gs := range stations {
		gsPos := Vec3{X: gs.X, Y: gs.Y, Z: gs.Z}
		var visible []VisibleSatellite
		for _, sat := range topo.Satellites() {
			satPos, ok := positions[sat.ID]
			if !ok {
				continue
			}
			distM := gsPos.DistanceTo(satPos)
			if b.MaxGSLLengthM > 0 && distM > b.MaxGSLLengthM {
				continue
			}
			if !hasLineOfSight(gsPos, satPos) {
				continue
			}
			if ElevationDegrees(gsPos, satPos) < b.MinElevationDeg {
				continue
			}
			visible = append(visible, VisibleSatellite{DistanceM: distM, SatelliteID: sat.ID})
		}
		sort.Slice(visible, func(i, j int) bool {
			if visible[i].DistanceM != visible[j].DistanceM {
				return visible[i].DistanceM < visible[j].DistanceM
			}
			return visible[i].SatelliteID < visible[j].SatelliteID
		})
		out[gsIdx] = visible
	}
	return out
}

// VisibilityProvider yields the visibility snapshot for a simulation
// instant. The forwarding engine consumes one snapshot per tick.
type VisibilityProvider interface {
	Visibility(simTime time.Time) VisibilityList
}

// GeometricVisibility is a VisibilityProvider that propagates satellite
// motion models and applies the geometric visibility rules.
type GeometricVisibility struct {
	Topology *Topology
	Builder  VisibilityBuilder
	Motion   map[int]MotionModel
}

// Visibility computes positions for the instant and builds the list.
func (g *GeometricVisibility) Visibility(simTime time.Time) VisibilityList {
	positions := make(map[int]Vec3, len(g.Motion))
	for id, m := range g.Motion {
		positions[id] = m.PositionECEF(simTime)
	}
	return g.Builder.Build(g.Topology, positions)
}

// StaticVisibility is a VisibilityProvider returning a fixed snapshot.
type StaticVisibility struct {
	List VisibilityList
}

// Visibility returns the fixed snapshot.
func (s *StaticVisibility) Visibility(time.Time) VisibilityList {
	return s.List
}

// SatellitePositions propagates every satellite's motion model once and
// returns positions keyed by satellite id. Satellites without a motion
// model are omitted.
func SatellitePositions(sats []*model.Satellite, motion map[int]MotionModel, simTime time.Time) map[int]Vec3 {
	positions := make(map[int]Vec3, len(sats))
	for _, sat := range sats {
		if m, ok := motion[sat.ID]; ok {
			positions[sat.ID] = m.PositionECEF(simTime)
		}
	}
	return positions
}
