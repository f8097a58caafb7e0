package core

// ISLPair is an undirected ISL between two satellite ids.
type ISLPair struct {
	A int
	B int
}

// RingISLs returns the intra-orbit ISLs of a constellation: each orbit is
// a closed ring of satellites. idxOffset shifts satellite ids, e.g. for
// multi-shell constellations. Orbits of one satellite have no ISLs and
// orbits of two have a single link, not a degenerate double edge.
func RingISLs(orbits, satsPerOrbit, idxOffset int) []ISLPair {
	if satsPerOrbit < 2 {
		return nil
	}
	linksPerOrbit := satsPerOrbit
	if satsPerOrbit == 2 {
		linksPerOrbit = 1
	}
	isls := make([]ISLPair, 0, orbits*linksPerOrbit)
	for orbit := 0; orbit < orbits; orbit++ {
		for sat := 0; sat < linksPerOrbit; sat++ {
			satID := idxOffset + orbit*satsPerOrbit + sat
			nextID := idxOffset + orbit*satsPerOrbit + (sat+1)%satsPerOrbit
			isls = append(isls, ISLPair{A: satID, B: nextID})
		}
	}
	return isls
}

// PlusGridISLs returns the +grid ISL set: intra-orbit rings plus one link
// from every satellite to the (shifted) same-index satellite in the next
// orbit. Constellations smaller than 3x3 cannot form a +grid and yield
// an empty set.
func PlusGridISLs(orbits, satsPerOrbit, islShift, idxOffset int) []ISLPair {
	if orbits < 3 || satsPerOrbit < 3 {
		return nil
	}

	isls := RingISLs(orbits, satsPerOrbit, idxOffset)
	for orbit := 0; orbit < orbits; orbit++ {
		nextOrbit := (orbit + 1) % orbits
		for sat := 0; sat < satsPerOrbit; sat++ {
			satID := idxOffset + orbit*satsPerOrbit + sat
			adjID := idxOffset + nextOrbit*satsPerOrbit + (sat+islShift)%satsPerOrbit
			isls = append(isls, ISLPair{A: satID, B: adjID})
		}
	}
	return isls
}
