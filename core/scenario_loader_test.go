package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const chainScenarioJSON = `{
  "name": "four-sat-chain",
  "max_gsl_length_m": 2000000,
  "satellites": [
    {"id": 10, "ecef_x_m": 6921000, "ecef_y_m": 0, "ecef_z_m": 0},
    {"id": 20, "ecef_x_m": 6921000, "ecef_y_m": 1000000, "ecef_z_m": 0},
    {"id": 30, "ecef_x_m": 6921000, "ecef_y_m": 2000000, "ecef_z_m": 0},
    {"id": 40, "ecef_x_m": 6921000, "ecef_y_m": 3000000, "ecef_z_m": 0}
  ],
  "ground_stations": [
    {"id": 100, "name": "alpha", "ecef_x_m": 6371000, "ecef_y_m": 0, "ecef_z_m": 0}
  ],
  "isls": [
    {"a": 10, "b": 20},
    {"a": 20, "b": 30},
    {"a": 30, "b": 40, "distance_m": 999}
  ]
}`

func TestLoadScenarioAndBuild(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(chainScenarioJSON))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if s.Name != "four-sat-chain" {
		t.Errorf("Name = %q", s.Name)
	}

	topo, motion, err := s.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := len(topo.SatelliteNodeIDs()); got != 4 {
		t.Fatalf("satellite nodes = %d, want 4", got)
	}
	if got := len(motion); got != 4 {
		t.Fatalf("motion models = %d, want 4", got)
	}

	// Derived ISL weight comes from epoch positions, 1000 km apart in Y.
	if w, ok := topo.LinkWeight(10, 20); !ok || w != 1000e3 {
		t.Errorf("LinkWeight(10,20) = %v, %v; want 1000e3", w, ok)
	}
	// Explicit distances win over geometry.
	if w, ok := topo.LinkWeight(30, 40); !ok || w != 999 {
		t.Errorf("LinkWeight(30,40) = %v, %v; want explicit 999", w, ok)
	}
	if len(topo.GroundStations()) != 1 || topo.GroundStations()[0].Name != "alpha" {
		t.Errorf("ground stations = %+v", topo.GroundStations())
	}
}

func TestLoadScenarioRejectsDuplicateIDs(t *testing.T) {
	bad := `{"satellites": [{"id": 1}, {"id": 1}]}`
	if _, err := LoadScenario(strings.NewReader(bad)); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("duplicate ids error = %v, want ErrBadScenario", err)
	}

	overlap := `{"satellites": [{"id": 1}], "ground_stations": [{"id": 1, "ecef_x_m": 6371000, "ecef_y_m": 0, "ecef_z_m": 0}]}`
	if _, err := LoadScenario(strings.NewReader(overlap)); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("overlapping ids error = %v, want ErrBadScenario", err)
	}
}

func TestLoadScenarioRejectsUnknownPolicyAndFields(t *testing.T) {
	bad := `{"satellites": [{"id": 1}], "isl_policy": "mesh"}`
	if _, err := LoadScenario(strings.NewReader(bad)); !errors.Is(err, ErrBadScenario) {
		t.Fatalf("unknown policy error = %v, want ErrBadScenario", err)
	}

	unknown := `{"satellites": [{"id": 1}], "frobnicate": true}`
	if _, err := LoadScenario(strings.NewReader(unknown)); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestScenarioRingPolicyMapsFileOrder(t *testing.T) {
	src := `{
	  "orbits": 1,
	  "sats_per_orbit": 3,
	  "isl_policy": "ring",
	  "satellites": [
	    {"id": 7, "ecef_x_m": 6921000, "ecef_y_m": 0, "ecef_z_m": 0},
	    {"id": 8, "ecef_x_m": 6921000, "ecef_y_m": 1000000, "ecef_z_m": 0},
	    {"id": 9, "ecef_x_m": 6921000, "ecef_y_m": 2000000, "ecef_z_m": 0}
	  ],
	  "ground_stations": []
	}`
	s, err := LoadScenario(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	topo, _, err := s.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, pair := range [][2]int{{7, 8}, {8, 9}, {7, 9}} {
		if _, ok := topo.LinkWeight(pair[0], pair[1]); !ok {
			t.Errorf("missing ring ISL (%d,%d)", pair[0], pair[1])
		}
	}
}

func TestScenarioMaxISLLengthFilters(t *testing.T) {
	src := `{
	  "max_isl_length_m": 1500000,
	  "satellites": [
	    {"id": 0, "ecef_x_m": 6921000, "ecef_y_m": 0, "ecef_z_m": 0},
	    {"id": 1, "ecef_x_m": 6921000, "ecef_y_m": 1000000, "ecef_z_m": 0},
	    {"id": 2, "ecef_x_m": 6921000, "ecef_y_m": 3000000, "ecef_z_m": 0}
	  ],
	  "ground_stations": [],
	  "isls": [{"a": 0, "b": 1}, {"a": 0, "b": 2}]
	}`
	s, err := LoadScenario(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	topo, _, err := s.Build(time.Now())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := topo.LinkWeight(0, 1); !ok {
		t.Error("in-range ISL (0,1) missing")
	}
	if _, ok := topo.LinkWeight(0, 2); ok {
		t.Error("over-length ISL (0,2) not filtered")
	}
}

func TestRefreshISLWeights(t *testing.T) {
	topo := NewTopology(newTestSatellites(0, 1), nil)
	mustAddISL(t, topo, 0, 1, 1000e3)

	positions := map[int]Vec3{
		0: {X: 0, Y: 0, Z: 0},
		1: {X: 2000e3, Y: 0, Z: 0},
	}
	RefreshISLWeights(topo, positions)
	if w, _ := topo.LinkWeight(0, 1); w != 2000e3 {
		t.Fatalf("refreshed weight = %v, want 2000e3", w)
	}
	// Interface assignments survive weight refresh.
	if idx, ok := topo.InterfaceIndex(0, 1); !ok || idx != 0 {
		t.Errorf("InterfaceIndex(0,1) = %d, %v after refresh", idx, ok)
	}
}
