package format

import "encoding/binary"

// Header fields are little-endian regardless of host order so that dumps of an
// arena read the same on every platform.

// PutU32 writes a uint32 value to the buffer at the specified offset in little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 value from the buffer at the specified offset in little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// Link returns the link word of the header at unit ref.
func Link(b []byte, ref uint32) uint32 {
	return ReadU32(b, int(ref)<<UnitShift+LinkOffset)
}

// SetLink writes the link word of the header at unit ref.
func SetLink(b []byte, ref, v uint32) {
	PutU32(b, int(ref)<<UnitShift+LinkOffset, v)
}

// Size returns the size field (in units) of the header at unit ref.
func Size(b []byte, ref uint32) uint32 {
	return ReadU32(b, int(ref)<<UnitShift+SizeOffset)
}

// SetSize writes the size field (in units) of the header at unit ref.
func SetSize(b []byte, ref, units uint32) {
	PutU32(b, int(ref)<<UnitShift+SizeOffset, units)
}
