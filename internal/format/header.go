package format

import "fmt"

// Header is a decoded block header.
//
// Layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Link word: next free unit index, or GuardMagic when allocated.
//	0x04    4     Block size in units, header included.
type Header struct {
	Ref   uint32 // Unit index of the header
	Link  uint32
	Units uint32
}

// Guarded reports whether the link word carries the allocation guard.
func (h Header) Guarded() bool {
	return h.Link == GuardMagic
}

// End returns the unit index just past the block.
func (h Header) End() uint64 {
	return uint64(h.Ref) + uint64(h.Units)
}

// DecodeHeader reads the header at unit ref, checking that it lies inside b.
func DecodeHeader(b []byte, ref uint32) (Header, error) {
	off := int(ref) << UnitShift
	if off < 0 || off+UnitSize > len(b) {
		return Header{}, fmt.Errorf("header at unit %d: %w", ref, ErrTruncated)
	}
	return Header{
		Ref:   ref,
		Link:  ReadU32(b, off+LinkOffset),
		Units: ReadU32(b, off+SizeOffset),
	}, nil
}

// EncodeHeader writes h at h.Ref.
func EncodeHeader(b []byte, h Header) {
	off := int(h.Ref) << UnitShift
	PutU32(b, off+LinkOffset, h.Link)
	PutU32(b, off+SizeOffset, h.Units)
}
