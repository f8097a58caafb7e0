package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/leo-routing-sim/model"
)

// ISL generation policies accepted in scenario files.
const (
	ISLPolicyExplicit = "explicit"
	ISLPolicyRing     = "ring"
	ISLPolicyPlusGrid = "plus_grid"
)

var ErrBadScenario = errors.New("invalid scenario")

// ScenarioSatellite describes one satellite in a scenario file. Position
// comes from a TLE when both lines are present, otherwise from the static
// ECEF coordinates.
type ScenarioSatellite struct {
	ID       int     `json:"id"`
	TLELine1 string  `json:"tle_line1,omitempty"`
	TLELine2 string  `json:"tle_line2,omitempty"`
	ECEFXM   float64 `json:"ecef_x_m,omitempty"`
	ECEFYM   float64 `json:"ecef_y_m,omitempty"`
	ECEFZM   float64 `json:"ecef_z_m,omitempty"`
}

// ScenarioGroundStation describes one gateway site.
type ScenarioGroundStation struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	LatitudeDeg  float64 `json:"latitude_deg,omitempty"`
	LongitudeDeg float64 `json:"longitude_deg,omitempty"`
	ElevationM   float64 `json:"elevation_m,omitempty"`
	ECEFXM       float64 `json:"ecef_x_m"`
	ECEFYM       float64 `json:"ecef_y_m"`
	ECEFZM       float64 `json:"ecef_z_m"`
}

// ScenarioISL is an explicit ISL. DistanceM of 0 means "derive from
// positions at the epoch".
type ScenarioISL struct {
	A         int     `json:"a"`
	B         int     `json:"b"`
	DistanceM float64 `json:"distance_m,omitempty"`
}

// Scenario is the JSON description of a constellation run.
type Scenario struct {
	Name string `json:"name"`

	Orbits       int    `json:"orbits,omitempty"`
	SatsPerOrbit int    `json:"sats_per_orbit,omitempty"`
	ISLPolicy    string `json:"isl_policy,omitempty"`
	ISLShift     int    `json:"isl_shift,omitempty"`

	MaxISLLengthM   float64 `json:"max_isl_length_m,omitempty"`
	MaxGSLLengthM   float64 `json:"max_gsl_length_m,omitempty"`
	MinElevationDeg float64 `json:"min_elevation_deg,omitempty"`

	Satellites     []ScenarioSatellite     `json:"satellites"`
	GroundStations []ScenarioGroundStation `json:"ground_stations"`
	ISLs           []ScenarioISL           `json:"isls,omitempty"`

	GSLInterfaces []model.InterfaceInfo `json:"gsl_interfaces,omitempty"`
}

// LoadScenario decodes and validates a scenario file.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if len(s.Satellites) == 0 {
		return fmt.Errorf("%w: no satellites", ErrBadScenario)
	}
	ids := make(map[int]bool, len(s.Satellites))
	for _, sat := range s.Satellites {
		if ids[sat.ID] {
			return fmt.Errorf("%w: duplicate satellite id %d", ErrBadScenario, sat.ID)
		}
		ids[sat.ID] = true
	}
	for _, gs := range s.GroundStations {
		if ids[gs.ID] {
			return fmt.Errorf("%w: ground station id %d overlaps a satellite id", ErrBadScenario, gs.ID)
		}
		ids[gs.ID] = true
	}
	switch s.ISLPolicy {
	case "", ISLPolicyExplicit:
		// explicit list, possibly empty
	case ISLPolicyRing, ISLPolicyPlusGrid:
		if s.Orbits <= 0 || s.SatsPerOrbit <= 0 {
			return fmt.Errorf("%w: %s ISL policy requires orbits and sats_per_orbit", ErrBadScenario, s.ISLPolicy)
		}
		if s.Orbits*s.SatsPerOrbit != len(s.Satellites) {
			return fmt.Errorf("%w: orbits*sats_per_orbit = %d but %d satellites listed",
				ErrBadScenario, s.Orbits*s.SatsPerOrbit, len(s.Satellites))
		}
	default:
		return fmt.Errorf("%w: unknown ISL policy %q", ErrBadScenario, s.ISLPolicy)
	}
	return nil
}

// Build materializes the scenario: satellites with motion models, ground
// stations, and the ISL graph with distances taken from the epoch
// positions. Generated ISL policies (ring, +grid) map grid indices onto
// the satellite list in file order, so ids stay free-form.
func (s *Scenario) Build(epoch time.Time) (*Topology, map[int]MotionModel, error) {
	sats := make([]*model.Satellite, 0, len(s.Satellites))
	motion := make(map[int]MotionModel, len(s.Satellites))
	for i, ss := range s.Satellites {
		sat := model.NewSatellite(ss.ID)
		if s.SatsPerOrbit > 0 {
			sat.OrbitalPlaneID = i / s.SatsPerOrbit
			sat.IndexInPlane = i % s.SatsPerOrbit
		}
		sats = append(sats, sat)
		motion[ss.ID] = NewMotionModel(Vec3{X: ss.ECEFXM, Y: ss.ECEFYM, Z: ss.ECEFZM}, ss.TLELine1, ss.TLELine2)
	}

	stations := make([]*model.GroundStation, 0, len(s.GroundStations))
	for _, sg := range s.GroundStations {
		stations = append(stations, &model.GroundStation{
			ID:           sg.ID,
			Name:         sg.Name,
			LatitudeDeg:  sg.LatitudeDeg,
			LongitudeDeg: sg.LongitudeDeg,
			ElevationM:   sg.ElevationM,
			X:            sg.ECEFXM,
			Y:            sg.ECEFYM,
			Z:            sg.ECEFZM,
		})
	}

	topo := NewTopology(sats, stations)
	positions := SatellitePositions(sats, motion, epoch)

	for _, isl := range s.islPairs() {
		a, b := isl.A, isl.B
		distM := isl.DistanceM
		if distM == 0 {
			pa, okA := positions[a]
			pb, okB := positions[b]
			if !okA || !okB {
				return nil, nil, fmt.Errorf("%w: ISL (%d,%d) references unknown satellite", ErrBadScenario, a, b)
			}
			distM = pa.DistanceTo(pb)
		}
		if s.MaxISLLengthM > 0 && distM > s.MaxISLLengthM {
			continue
		}
		if err := topo.AddISL(a, b, distM); err != nil {
			return nil, nil, err
		}
	}
	return topo, motion, nil
}

// islPairs resolves the ISL policy into concrete pairs with optional
// explicit distances.
func (s *Scenario) islPairs() []ScenarioISL {
	switch s.ISLPolicy {
	case ISLPolicyRing:
		return s.mapGridPairs(RingISLs(s.Orbits, s.SatsPerOrbit, 0))
	case ISLPolicyPlusGrid:
		return s.mapGridPairs(PlusGridISLs(s.Orbits, s.SatsPerOrbit, s.ISLShift, 0))
	default:
		return s.ISLs
	}
}

// mapGridPairs translates grid-index pairs into satellite-id pairs via
// the file order of the satellite list.
func (s *Scenario) mapGridPairs(pairs []ISLPair) []ScenarioISL {
	out := make([]ScenarioISL, 0, len(pairs))
	for _, p := range pairs {
		if p.A >= len(s.Satellites) || p.B >= len(s.Satellites) {
			continue
		}
		out = append(out, ScenarioISL{A: s.Satellites[p.A].ID, B: s.Satellites[p.B].ID})
	}
	return out
}

// RefreshISLWeights recomputes every ISL distance from current satellite
// positions without disturbing interface assignments. Links whose
// endpoints have no position keep their previous weight.
func RefreshISLWeights(topo *Topology, positions map[int]Vec3) {
	for _, a := range topo.SatelliteNodeIDs() {
		for _, b := range topo.Neighbors(a) {
			if a >= b {
				continue
			}
			pa, okA := positions[a]
			pb, okB := positions[b]
			if !okA || !okB {
				continue
			}
			// Endpoints exist by construction; error is impossible here.
			_ = topo.SetISLWeight(a, b, pa.DistanceTo(pb))
		}
	}
}
