package model

import (
	"errors"
	"fmt"
)

// Bit layout of a serialized topological address, least significant first:
//
//	[ device : 20 ][ ground-station bit : 1 ][ subnet : 12 ][ shell : 8 ]
//
// The serialized form is what satellites use as forwarding-table keys, so the
// layout must stay stable across releases.
const (
	deviceBits = 20
	subnetBits = 12
	shellBits  = 8

	deviceMask = int64(1)<<deviceBits - 1
	subnetMask = int64(1)<<subnetBits - 1
	shellMask  = int64(1)<<shellBits - 1
)

var (
	ErrAddressOutOfRange = errors.New("address field out of range")
	ErrBadAddressInteger = errors.New("invalid serialized address")
)

// TopologicalAddress is the hierarchical identifier used by the
// addressing-based routing scheme: a shell, a subnet within the shell, a
// satellite/ground-station discriminator and a device number.
type TopologicalAddress struct {
	ShellID       int
	SubnetIndex   int
	GroundStation bool
	DeviceID      int
}

// NewSatelliteAddress derives the address of a satellite from its
// constellation id using the single-shell scheme: shell 0, subnet 0,
// satellite discriminator, device id equal to the satellite id.
func NewSatelliteAddress(satelliteID int) (TopologicalAddress, error) {
	if satelliteID < 0 || int64(satelliteID) > deviceMask {
		return TopologicalAddress{}, fmt.Errorf("%w: satellite id %d", ErrAddressOutOfRange, satelliteID)
	}
	return TopologicalAddress{DeviceID: satelliteID}, nil
}

// ToInteger serializes the address into a single integer suitable as a
// forwarding-table key. The inverse is AddressFromInteger.
func (a TopologicalAddress) ToInteger() int64 {
	gs := int64(0)
	if a.GroundStation {
		gs = 1
	}
	return int64(a.ShellID)<<(subnetBits+1+deviceBits) |
		int64(a.SubnetIndex)<<(1+deviceBits) |
		gs<<deviceBits |
		int64(a.DeviceID)
}

// AddressFromInteger reconstructs an address from its serialized form.
// AddressFromInteger(a.ToInteger()) == a for every valid address.
func AddressFromInteger(v int64) (TopologicalAddress, error) {
	if v < 0 || v>>(shellBits+subnetBits+1+deviceBits) != 0 {
		return TopologicalAddress{}, fmt.Errorf("%w: %d", ErrBadAddressInteger, v)
	}
	return TopologicalAddress{
		ShellID:       int(v >> (subnetBits + 1 + deviceBits) & shellMask),
		SubnetIndex:   int(v >> (1 + deviceBits) & subnetMask),
		GroundStation: v>>deviceBits&1 == 1,
		DeviceID:      int(v & deviceMask),
	}, nil
}

// Valid reports whether every field fits the serialized layout.
func (a TopologicalAddress) Valid() bool {
	return a.ShellID >= 0 && int64(a.ShellID) <= shellMask &&
		a.SubnetIndex >= 0 && int64(a.SubnetIndex) <= subnetMask &&
		a.DeviceID >= 0 && int64(a.DeviceID) <= deviceMask
}

func (a TopologicalAddress) String() string {
	kind := "sat"
	if a.GroundStation {
		kind = "gs"
	}
	return fmt.Sprintf("%d.%d.%s.%d", a.ShellID, a.SubnetIndex, kind, a.DeviceID)
}
