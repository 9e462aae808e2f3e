package alloc

import (
	"fmt"

	"github.com/joshuapare/kralloc/internal/format"
)

// freeSet collects the free nodes reachable from the sentinel, checking that
// the list wraps exactly once and stays in bounds.
func (a *Arena) freeSet() (map[Ref]uint32, error) {
	units := uint64(len(a.mem) >> format.UnitShift)
	set := make(map[Ref]uint32)

	if got := format.Size(a.mem, base); got != 0 {
		return nil, fmt.Errorf("sentinel size %d: %w", got, ErrCorrupt)
	}
	prev := base
	for node := format.Link(a.mem, base); node != base; node = format.Link(a.mem, node) {
		if uint64(node) >= units {
			return nil, fmt.Errorf("free node %d beyond break %d: %w", node, units, ErrCorrupt)
		}
		if node <= prev {
			return nil, fmt.Errorf("free list out of order: %d after %d: %w", node, prev, ErrCorrupt)
		}
		size := format.Size(a.mem, node)
		if size == 0 || uint64(node)+uint64(size) > units {
			return nil, fmt.Errorf("free node %d has size %d: %w", node, size, ErrCorrupt)
		}
		set[node] = size
		prev = node
	}
	return set, nil
}

// Walk calls fn for every block in address order until fn returns false.
func (a *Arena) Walk(fn func(Block) bool) error {
	if !a.inited {
		return nil
	}
	free, err := a.freeSet()
	if err != nil {
		return err
	}
	end := uint64(len(a.mem) >> format.UnitShift)
	for ref := uint64(1); ref < end; {
		h, err := format.DecodeHeader(a.mem, Ref(ref))
		if err != nil {
			return fmt.Errorf("walk: %w: %w", ErrCorrupt, err)
		}
		if h.Units == 0 || h.End() > end {
			return fmt.Errorf("walk: block %d has size %d: %w", ref, h.Units, ErrCorrupt)
		}
		_, isFree := free[h.Ref]
		if !fn(Block{Ref: h.Ref, Units: h.Units, Free: isFree}) {
			return nil
		}
		ref = h.End()
	}
	return nil
}

// Check verifies the arena invariants:
//   - the free list is circular through the sentinel and in address order
//   - the cursor is on the list
//   - no two free blocks are adjacent
//   - blocks tile the grown region and their sizes add up to it
//   - allocated blocks carry the guard and match the live counters
func (a *Arena) Check() error {
	if !a.inited {
		return nil
	}
	free, err := a.freeSet()
	if err != nil {
		return err
	}
	if _, ok := free[a.cursor]; !ok && a.cursor != base {
		return fmt.Errorf("cursor %d not on free list: %w", a.cursor, ErrCorrupt)
	}

	var (
		total, liveUnits uint64
		live, seenFree   int
		prevFree         bool
		bad              error
	)
	err = a.Walk(func(b Block) bool {
		total += uint64(b.Units)
		if b.Free {
			seenFree++
		} else {
			live++
			liveUnits += uint64(b.Units)
		}
		if b.Free && prevFree {
			bad = fmt.Errorf("free blocks adjacent at unit %d: %w", b.Ref, ErrCorrupt)
			return false
		}
		if !b.Free && format.Link(a.mem, b.Ref) != format.GuardMagic {
			bad = fmt.Errorf("allocated block %d lost its guard: %w", b.Ref, ErrCorrupt)
			return false
		}
		prevFree = b.Free
		return true
	})
	if err != nil {
		return err
	}
	if bad != nil {
		return bad
	}

	switch {
	case seenFree != len(free):
		return fmt.Errorf("walk saw %d free blocks, list has %d: %w", seenFree, len(free), ErrCorrupt)
	case total != a.grown:
		return fmt.Errorf("blocks cover %d units, grew %d: %w", total, a.grown, ErrCorrupt)
	case live != a.live || liveUnits != a.liveUnits:
		return fmt.Errorf("walk saw %d live blocks (%d units), counters say %d (%d): %w",
			live, liveUnits, a.live, a.liveUnits, ErrCorrupt)
	}
	return nil
}
