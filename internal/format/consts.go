// Package format describes the in-memory layout shared by every block the
// allocator manages. It keeps the byte-level codecs in one place so the
// allocator can reason in units and offsets without touching encoding/binary.
package format

const (
	// UnitSize is the allocation quantum in bytes. One unit holds exactly one
	// block header, so the header overhead of a block is one unit.
	UnitSize = 8

	// UnitShift is log2(UnitSize).
	UnitShift = 3

	// UnitMask masks the sub-unit bits of a byte offset.
	UnitMask = UnitSize - 1

	// LinkOffset is the offset of the link word inside a header.
	// Free blocks store the unit index of the next free block here.
	// Allocated blocks store GuardMagic.
	LinkOffset = 0x00

	// SizeOffset is the offset of the block size (in units, header included).
	SizeOffset = 0x04

	// MaxUnits bounds the arena: unit indices must stay below GuardMagic so an
	// allocated header can never be mistaken for a free-list link.
	MaxUnits = 1 << 29

	// MaxBytes is the largest arena, in bytes, addressable by a uint32 Ptr.
	MaxBytes = MaxUnits * UnitSize

	// GuardMagic tags the link word of an allocated header.
	GuardMagic uint32 = 0xA110CA7E
)
