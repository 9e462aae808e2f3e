package alloc

import "github.com/joshuapare/kralloc/internal/format"

// Ref is the unit index of a block header inside the arena.
type Ref = uint32

// Ptr is the byte offset of a block's payload inside the arena.
type Ptr uint32

// Nil is never returned for a live block.
const Nil Ptr = 0

// base is the sentinel's unit index.
const base Ref = 0

// ptrOf returns the payload offset of the block whose header is at ref.
func ptrOf(ref Ref) Ptr {
	return Ptr(format.Bytes(ref + 1))
}

// refOf returns the header unit of the block whose payload is at p.
func refOf(p Ptr) Ref {
	return format.RefOf(int(p)) - 1
}

// Block describes one block of the arena as seen by Walk.
type Block struct {
	Ref   Ref    // Header unit
	Units uint32 // Size in units, header included
	Free  bool
}

// Ptr returns the payload offset of the block.
func (b Block) Ptr() Ptr { return ptrOf(b.Ref) }

// Size returns the block size in bytes, header included.
func (b Block) Size() int { return format.Bytes(b.Units) }

// End returns the unit just past the block.
func (b Block) End() uint64 { return uint64(b.Ref) + uint64(b.Units) }
