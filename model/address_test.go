package model

import (
	"errors"
	"testing"
)

func TestNewSatelliteAddress(t *testing.T) {
	for _, id := range []int{0, 1, 50, 100, 1048575} {
		addr, err := NewSatelliteAddress(id)
		if err != nil {
			t.Fatalf("NewSatelliteAddress(%d): %v", id, err)
		}
		if addr.DeviceID != id || addr.ShellID != 0 || addr.SubnetIndex != 0 || addr.GroundStation {
			t.Errorf("NewSatelliteAddress(%d) = %+v", id, addr)
		}
	}
}

func TestNewSatelliteAddressOutOfRange(t *testing.T) {
	for _, id := range []int{-1, 1 << 20} {
		if _, err := NewSatelliteAddress(id); !errors.Is(err, ErrAddressOutOfRange) {
			t.Errorf("NewSatelliteAddress(%d) error = %v, want ErrAddressOutOfRange", id, err)
		}
	}
}

func TestAddressIntegerRoundTrip(t *testing.T) {
	cases := []TopologicalAddress{
		{},
		{DeviceID: 1},
		{DeviceID: 50},
		{DeviceID: 100},
		{ShellID: 3, SubnetIndex: 7, GroundStation: true, DeviceID: 12345},
		{ShellID: 255, SubnetIndex: 4095, DeviceID: 1048575},
	}
	for _, addr := range cases {
		v := addr.ToInteger()
		got, err := AddressFromInteger(v)
		if err != nil {
			t.Fatalf("AddressFromInteger(%d): %v", v, err)
		}
		if got != addr {
			t.Errorf("round trip of %+v via %d = %+v", addr, v, got)
		}
	}
}

func TestAddressIntegersAreDistinct(t *testing.T) {
	seen := make(map[int64]TopologicalAddress)
	for id := 0; id < 200; id++ {
		addr, err := NewSatelliteAddress(id)
		if err != nil {
			t.Fatalf("NewSatelliteAddress(%d): %v", id, err)
		}
		v := addr.ToInteger()
		if prev, dup := seen[v]; dup {
			t.Fatalf("addresses %+v and %+v serialize to the same key %d", prev, addr, v)
		}
		seen[v] = addr
	}
}

func TestAddressFromIntegerRejectsBadValues(t *testing.T) {
	for _, v := range []int64{-1, int64(1) << 41} {
		if _, err := AddressFromInteger(v); !errors.Is(err, ErrBadAddressInteger) {
			t.Errorf("AddressFromInteger(%d) error = %v, want ErrBadAddressInteger", v, err)
		}
	}
}

func TestAddressValid(t *testing.T) {
	if !(TopologicalAddress{ShellID: 255, SubnetIndex: 4095, DeviceID: 1048575}).Valid() {
		t.Error("maximal address reported invalid")
	}
	for _, addr := range []TopologicalAddress{
		{ShellID: 256},
		{SubnetIndex: 4096},
		{DeviceID: 1 << 20},
		{DeviceID: -1},
	} {
		if addr.Valid() {
			t.Errorf("address %+v reported valid", addr)
		}
	}
}

func TestAddressString(t *testing.T) {
	sat, _ := NewSatelliteAddress(42)
	if got := sat.String(); got != "0.0.sat.42" {
		t.Errorf("String() = %q", got)
	}
	gs := TopologicalAddress{ShellID: 1, SubnetIndex: 2, GroundStation: true, DeviceID: 9}
	if got := gs.String(); got != "1.2.gs.9" {
		t.Errorf("String() = %q", got)
	}
}
