package core

import "testing"

func pairSet(pairs []ISLPair) map[ISLPair]bool {
	set := make(map[ISLPair]bool, len(pairs))
	for _, p := range pairs {
		if p.B < p.A {
			p.A, p.B = p.B, p.A
		}
		set[p] = true
	}
	return set
}

func TestRingISLs(t *testing.T) {
	pairs := RingISLs(2, 4, 0)
	if len(pairs) != 8 {
		t.Fatalf("RingISLs(2,4) has %d links, want 8", len(pairs))
	}
	set := pairSet(pairs)
	for _, want := range []ISLPair{{0, 1}, {1, 2}, {2, 3}, {0, 3}, {4, 5}, {5, 6}, {6, 7}, {4, 7}} {
		if !set[want] {
			t.Errorf("missing ring link %+v", want)
		}
	}
}

func TestRingISLsDegenerateOrbits(t *testing.T) {
	if got := RingISLs(3, 1, 0); got != nil {
		t.Errorf("RingISLs with one satellite per orbit = %v, want nil", got)
	}
	pairs := RingISLs(1, 2, 0)
	if len(pairs) != 1 {
		t.Fatalf("RingISLs(1,2) = %v, want single link", pairs)
	}
}

func TestRingISLsOffset(t *testing.T) {
	pairs := RingISLs(1, 3, 100)
	set := pairSet(pairs)
	for _, want := range []ISLPair{{100, 101}, {101, 102}, {100, 102}} {
		if !set[want] {
			t.Errorf("missing offset ring link %+v", want)
		}
	}
}

func TestPlusGridISLs(t *testing.T) {
	pairs := PlusGridISLs(3, 3, 0, 0)
	// 9 ring links plus 9 cross-orbit links.
	if len(pairs) != 18 {
		t.Fatalf("PlusGridISLs(3,3) has %d links, want 18", len(pairs))
	}
	set := pairSet(pairs)
	// Satellite 0 connects to its same-index neighbor in the next orbit.
	if !set[ISLPair{0, 3}] {
		t.Error("missing cross-orbit link (0,3)")
	}
	// Wrap-around from the last orbit back to the first.
	if !set[ISLPair{0, 6}] {
		t.Error("missing wrap-around link (6,0)")
	}
}

func TestPlusGridISLsShift(t *testing.T) {
	pairs := PlusGridISLs(3, 3, 1, 0)
	set := pairSet(pairs)
	// With shift 1, satellite 0 links to index 1 of the next orbit.
	if !set[ISLPair{0, 4}] {
		t.Error("missing shifted cross-orbit link (0,4)")
	}
}

func TestPlusGridISLsTooSmall(t *testing.T) {
	if got := PlusGridISLs(2, 3, 0, 0); got != nil {
		t.Errorf("PlusGridISLs(2,3) = %v, want nil", got)
	}
	if got := PlusGridISLs(3, 2, 0, 0); got != nil {
		t.Errorf("PlusGridISLs(3,2) = %v, want nil", got)
	}
}
