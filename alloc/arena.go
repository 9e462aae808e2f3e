package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/kralloc/heap"
	"github.com/joshuapare/kralloc/internal/format"
)

// Arena is a free-list allocator over the region of a heap.Provider.
type Arena struct {
	p       heap.Provider
	policy  Policy
	minGrow uint32
	guard   bool
	log     *slog.Logger

	// mem is the provider's view of [0, brk), refreshed after every Sbrk.
	mem []byte

	// inited is set once the sentinel exists. Until then the list is empty.
	inited bool

	// cursor is where the next search starts. Always a node on the list.
	cursor Ref

	// grown is the number of units obtained through grow. Blocks tile
	// [1, 1+grown) exactly.
	grown uint64

	live      int
	liveUnits uint64
	stats     allocatorStats
}

// allocatorStats holds counters reported by Stats.
type allocatorStats struct {
	AllocCalls       int // Total Alloc() calls
	AllocSlowPath    int // Allocations that required grow()
	FreeCalls        int // Total Free() calls
	InvalidReleases  int // Free() calls rejected with ErrInvalidRelease
	GrowCalls        int // Successful grow() calls
	GrowFailures     int // grow() calls refused by the provider
	Splits           int // Blocks carved from the tail of a larger one
	ExactFits        int // Blocks unlinked whole
	CoalesceForward  int // Released blocks that absorbed the next free block
	CoalesceBackward int // Released blocks absorbed by the previous free block
}

// New creates an arena. The sentinel and the first region are created lazily
// on the first Alloc or Grow.
//
// Parameters:
//   - cfg: arena configuration (use nil for DefaultConfig)
func New(cfg *Config) (*Arena, error) {
	if cfg == nil {
		cfg = &DefaultConfig
	}
	c, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Arena{
		p:       c.Provider,
		policy:  c.Policy,
		minGrow: c.MinGrowUnits,
		guard:   !c.DisableGuard,
		log:     c.Logger,
	}, nil
}

// Policy returns the search policy in use.
func (a *Arena) Policy() Policy { return a.policy }

// init reserves the sentinel at unit 0 of a fresh provider.
func (a *Arena) init() error {
	if a.inited {
		return nil
	}
	off, err := a.p.Sbrk(format.UnitSize)
	if err != nil {
		return fmt.Errorf("%w: reserve sentinel: %w", ErrNoMemory, err)
	}
	if off != 0 {
		return fmt.Errorf("sentinel at offset %d: %w", off, ErrForeignBreak)
	}
	a.mem = a.p.Bytes()
	format.EncodeHeader(a.mem, format.Header{Ref: base, Link: base, Units: 0})
	a.cursor = base
	a.inited = true
	return nil
}

// list returns the policy view of the free list.
func (a *Arena) list() List { return List{a: a} }

// Alloc allocates a block with room for at least nbytes and returns the
// payload offset together with a slice over the usable payload.
func (a *Arena) Alloc(nbytes uint32) (Ptr, []byte, error) {
	a.stats.AllocCalls++

	need := format.UnitsFor(uint64(nbytes))
	if need > format.MaxUnits {
		return Nil, nil, fmt.Errorf("alloc(%d): %w", nbytes, ErrTooLarge)
	}
	units := uint32(need)

	if err := a.init(); err != nil {
		return Nil, nil, err
	}

	prev, ok := a.policy.Search(a.list(), units)
	if !ok {
		if err := a.grow(units); err != nil {
			return Nil, nil, fmt.Errorf("alloc(%d): %w", nbytes, err)
		}
		a.stats.AllocSlowPath++

		prev, ok = a.policy.Search(a.list(), units)
		if !ok {
			// grow released a block of at least units, so every policy
			// must see it on a full lap.
			return Nil, nil, fmt.Errorf("alloc(%d): no fit after grow: %w", nbytes, ErrCorrupt)
		}
	}

	ref := a.take(prev, units)
	a.live++
	a.liveUnits += uint64(units)
	return ptrOf(ref), a.payload(ref, units), nil
}

// take removes units from the free node after prev and returns the header of
// the allocated block. An exact fit is unlinked whole; a larger node keeps its
// start and gives up its tail.
func (a *Arena) take(prev Ref, units uint32) Ref {
	b := a.mem
	node := format.Link(b, prev)
	size := format.Size(b, node)

	if size == units {
		format.SetLink(b, prev, format.Link(b, node))
		a.stats.ExactFits++
	} else {
		size -= units
		format.SetSize(b, node, size)
		node += size
		format.SetSize(b, node, units)
		a.stats.Splits++
	}
	format.SetLink(b, node, format.GuardMagic)
	a.cursor = prev
	return node
}

// payload returns the usable bytes of the block at ref.
func (a *Arena) payload(ref Ref, units uint32) []byte {
	lo := format.Bytes(ref + 1)
	hi := format.Bytes(ref + units)
	return a.mem[lo:hi:hi]
}

// Free returns the block at p to the free list, merging it with free
// neighbours. Free(Nil) is a no-op.
//
// Releasing a pointer that Alloc did not return, or releasing it twice, is
// reported as ErrInvalidRelease when detected. Detection relies on the header
// guard and on bounds/overlap checks; it is not a provenance check, and a
// block reallocated in between cannot be told apart from a live one.
func (a *Arena) Free(p Ptr) error {
	a.stats.FreeCalls++
	if p == Nil {
		return nil
	}

	h, err := a.lookup(p)
	if err != nil {
		return a.rejectRelease(p, err)
	}
	if err := a.release(h.Ref); err != nil {
		return a.rejectRelease(p, err)
	}
	a.live--
	a.liveUnits -= uint64(h.Units)
	return nil
}

func (a *Arena) rejectRelease(p Ptr, err error) error {
	a.stats.InvalidReleases++
	a.log.Warn("invalid release", "ptr", uint32(p), "err", err)
	return err
}

// lookup validates p and decodes the header of its block.
func (a *Arena) lookup(p Ptr) (format.Header, error) {
	if !a.inited {
		return format.Header{}, fmt.Errorf("ptr %#x: arena empty: %w", uint32(p), ErrInvalidRelease)
	}
	off := int(p)
	if !format.IsAligned(off) || off < 2*format.UnitSize || off >= len(a.mem) {
		return format.Header{}, fmt.Errorf("ptr %#x outside arena: %w", uint32(p), ErrInvalidRelease)
	}
	h, err := format.DecodeHeader(a.mem, refOf(p))
	if err != nil {
		return format.Header{}, fmt.Errorf("ptr %#x: %w: %w", uint32(p), ErrInvalidRelease, err)
	}
	if a.guard && !h.Guarded() {
		return format.Header{}, fmt.Errorf("ptr %#x: header guard missing: %w", uint32(p), ErrInvalidRelease)
	}
	if h.Units < 2 || h.End() > uint64(len(a.mem)>>format.UnitShift) {
		return format.Header{}, fmt.Errorf("ptr %#x: bad size %d: %w", uint32(p), h.Units, ErrInvalidRelease)
	}
	return h, nil
}

// release links the block at mem into the free list. The block's size field
// must be set; its link word is overwritten.
func (a *Arena) release(mem Ref) error {
	b := a.mem
	size := format.Size(b, mem)

	// Find low, high with low < mem < high, or the wrap node when mem lies
	// above the highest free block. One lap at most: mem equal to a free node
	// never satisfies either condition.
	start := a.cursor
	low := start
	var high Ref
	for {
		high = format.Link(b, low)
		if mem > low && mem < high {
			break
		}
		if low >= high && (mem > low || mem < high) {
			break
		}
		low = high
		if low == start {
			return fmt.Errorf("unit %d is already free: %w", mem, ErrInvalidRelease)
		}
	}

	lowEnd := uint64(low) + uint64(format.Size(b, low))
	memEnd := uint64(mem) + uint64(size)
	if mem > low && lowEnd > uint64(mem) {
		return fmt.Errorf("unit %d overlaps free block at %d: %w", mem, low, ErrInvalidRelease)
	}
	if mem < high && memEnd > uint64(high) {
		return fmt.Errorf("unit %d overlaps free block at %d: %w", mem, high, ErrInvalidRelease)
	}

	if memEnd == uint64(high) {
		size += format.Size(b, high)
		format.SetSize(b, mem, size)
		format.SetLink(b, mem, format.Link(b, high))
		a.stats.CoalesceForward++
	} else {
		format.SetLink(b, mem, high)
	}

	if lowEnd == uint64(mem) {
		format.SetSize(b, low, format.Size(b, low)+size)
		format.SetLink(b, low, format.Link(b, mem))
		a.stats.CoalesceBackward++
	} else {
		format.SetLink(b, low, mem)
	}

	a.cursor = low
	return nil
}

// Grow extends the arena by at least units units and adds the new region to
// the free list.
func (a *Arena) Grow(units uint32) error {
	if err := a.init(); err != nil {
		return err
	}
	return a.grow(units)
}

// grow asks the provider for max(units, minGrow) units. On failure nothing
// changes.
func (a *Arena) grow(units uint32) error {
	nu := max(units, a.minGrow)
	brk := len(a.mem)
	if uint64(brk>>format.UnitShift)+uint64(nu) > format.MaxUnits {
		a.stats.GrowFailures++
		a.log.Warn("grow beyond arena limit", "units", nu, "brk", brk)
		return fmt.Errorf("%w: grow by %d units at break %d", ErrNoMemory, nu, brk)
	}

	off, err := a.p.Sbrk(format.Bytes(nu))
	if err != nil {
		a.stats.GrowFailures++
		a.log.Warn("grow failed", "units", nu, "bytes", format.Bytes(nu), "err", err)
		return fmt.Errorf("%w: grow by %d units: %w", ErrNoMemory, nu, err)
	}
	if off != brk {
		return fmt.Errorf("grow: got offset %d, want %d: %w", off, brk, ErrForeignBreak)
	}

	a.mem = a.p.Bytes()
	ref := format.RefOf(off)
	format.EncodeHeader(a.mem, format.Header{Ref: ref, Link: base, Units: nu})
	a.grown += uint64(nu)
	a.stats.GrowCalls++
	a.log.Debug("grew arena", "units", nu, "bytes", format.Bytes(nu), "at", off)

	if err := a.release(ref); err != nil {
		return fmt.Errorf("grow: %w: %w", ErrCorrupt, err)
	}
	return nil
}
