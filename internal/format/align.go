package format

// Unit conversion helpers. Byte counts are carried as uint64 so that rounding
// a uint32 request up can never wrap.

// UnitsFor returns the number of units needed to hold n payload bytes plus the
// header. A zero-byte request still reserves one payload unit so a live block
// never aliases the header of its neighbour.
//
// Example:
//
//	UnitsFor(0)  = 2
//	UnitsFor(1)  = 2
//	UnitsFor(8)  = 2
//	UnitsFor(9)  = 3
//	UnitsFor(248) = 32
func UnitsFor(n uint64) uint64 {
	units := (n + UnitMask) >> UnitShift
	if units == 0 {
		units = 1
	}
	return units + 1
}

// AlignUnit returns n rounded up to the next unit boundary.
//
// Example:
//
//	AlignUnit(1) = 8
//	AlignUnit(8) = 8
//	AlignUnit(9) = 16
func AlignUnit(n int) int {
	return (n + UnitMask) & ^UnitMask
}

// IsAligned reports whether the byte offset n sits on a unit boundary.
func IsAligned(n int) bool {
	return n&UnitMask == 0
}

// Bytes converts a unit count to bytes.
func Bytes(units uint32) int {
	return int(units) << UnitShift
}

// RefOf converts a byte offset to the unit index containing it.
func RefOf(off int) uint32 {
	return uint32(off >> UnitShift)
}
