package model

// GroundStation is a gateway site on the ground. Ground stations are
// immutable once constructed and their ids never overlap satellite ids.
type GroundStation struct {
	ID   int
	Name string

	LatitudeDeg  float64
	LongitudeDeg float64
	ElevationM   float64

	// ECEF position in metres.
	X float64
	Y float64
	Z float64
}

