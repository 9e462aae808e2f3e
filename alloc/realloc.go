package alloc

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/kralloc/internal/format"
)

// Calloc allocates room for n elements of size bytes each and zeroes it.
func (a *Arena) Calloc(n, size uint32) (Ptr, []byte, error) {
	total := uint64(n) * uint64(size)
	if total > math.MaxUint32 {
		return Nil, nil, fmt.Errorf("calloc(%d, %d): %w", n, size, ErrTooLarge)
	}
	p, buf, err := a.Alloc(uint32(total))
	if err != nil {
		return Nil, nil, err
	}
	clear(buf)
	return p, buf, nil
}

// Realloc resizes the block at p to hold at least nbytes, moving it when the
// current block is too small. Realloc(Nil, n) is Alloc(n). A block is never
// shrunk in place. On failure the original block is untouched and still owned
// by the caller.
func (a *Arena) Realloc(p Ptr, nbytes uint32) (Ptr, []byte, error) {
	if p == Nil {
		return a.Alloc(nbytes)
	}
	h, err := a.lookup(p)
	if err != nil {
		return Nil, nil, err
	}
	need := format.UnitsFor(uint64(nbytes))
	if need > format.MaxUnits {
		return Nil, nil, fmt.Errorf("realloc(%d): %w", nbytes, ErrTooLarge)
	}
	if uint32(need) <= h.Units {
		return p, a.payload(h.Ref, h.Units), nil
	}

	np, buf, err := a.Alloc(nbytes)
	if err != nil {
		return Nil, nil, err
	}
	copy(buf, a.payload(h.Ref, h.Units))
	if err := a.Free(p); err != nil {
		// Hand the new block back so a failed move leaks nothing.
		return Nil, nil, errors.Join(err, a.Free(np))
	}
	return np, buf, nil
}

// Bytes returns the usable payload of the live block at p.
func (a *Arena) Bytes(p Ptr) ([]byte, error) {
	h, err := a.lookup(p)
	if err != nil {
		return nil, err
	}
	return a.payload(h.Ref, h.Units), nil
}

// UsableSize returns the payload capacity of the live block at p, which may
// exceed the size originally requested.
func (a *Arena) UsableSize(p Ptr) (int, error) {
	h, err := a.lookup(p)
	if err != nil {
		return 0, err
	}
	return format.Bytes(h.Units - 1), nil
}
