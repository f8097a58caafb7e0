package core

import (
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// MotionModel yields a node's ECEF position for a given simulation time.
type MotionModel interface {
	PositionECEF(simTime time.Time) Vec3
}

// StaticMotionModel always reports the same position. Used for ground
// stations and for fixture satellites in tests.
type StaticMotionModel struct {
	Position Vec3
}

// PositionECEF returns the fixed position.
func (m *StaticMotionModel) PositionECEF(time.Time) Vec3 {
	return m.Position
}

// OrbitalSGP4MotionModel propagates a TLE with SGP4.
type OrbitalSGP4MotionModel struct {
	sat satellite.Satellite
}

// NewOrbitalModelFromTLE constructs an orbital model from TLE lines.
func NewOrbitalModelFromTLE(line1, line2 string) *OrbitalSGP4MotionModel {
	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)
	return &OrbitalSGP4MotionModel{sat: sat}
}

// PositionECEF propagates the satellite to the given simulation time.
// go-satellite works in kilometres; the forwarding layer uses metres.
func (m *OrbitalSGP4MotionModel) PositionECEF(simTime time.Time) Vec3 {
	year, month, day := simTime.Date()
	hour, min, sec := simTime.Clock()

	posECI, _ := satellite.Propagate(m.sat, year, int(month), day, hour, min, sec)
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	gmst := satellite.ThetaG_JD(jd)
	posECEF := satellite.ECIToECEF(posECI, gmst)

	const kmToM = 1000.0
	return Vec3{
		X: posECEF.X * kmToM,
		Y: posECEF.Y * kmToM,
		Z: posECEF.Z * kmToM,
	}
}

// NewMotionModel picks a motion model: SGP4 when TLE lines are supplied,
// otherwise static at the given position.
func NewMotionModel(position Vec3, tle1, tle2 string) MotionModel {
	if tle1 != "" && tle2 != "" {
		return NewOrbitalModelFromTLE(tle1, tle2)
	}
	return &StaticMotionModel{Position: position}
}
