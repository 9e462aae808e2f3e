package alloc

import "github.com/joshuapare/kralloc/internal/format"

// Stats is a snapshot of the arena's counters and occupancy.
type Stats struct {
	allocatorStats

	GrownUnits  uint64 // Units obtained from the provider
	LiveBlocks  int    // Blocks currently allocated
	LiveUnits   uint64 // Units in allocated blocks, headers included
	FreeBlocks  int    // Free blocks, sentinel excluded
	FreeUnits   uint64 // Units in free blocks
	LargestFree uint32 // Largest free block in units
}

// GrownBytes returns GrownUnits in bytes.
func (s Stats) GrownBytes() uint64 { return s.GrownUnits * format.UnitSize }

// LiveBytes returns LiveUnits in bytes.
func (s Stats) LiveBytes() uint64 { return s.LiveUnits * format.UnitSize }

// FreeBytes returns FreeUnits in bytes.
func (s Stats) FreeBytes() uint64 { return s.FreeUnits * format.UnitSize }

// Stats walks the free list and returns the current counters.
func (a *Arena) Stats() Stats {
	s := Stats{
		allocatorStats: a.stats,
		GrownUnits:     a.grown,
		LiveBlocks:     a.live,
		LiveUnits:      a.liveUnits,
	}
	if !a.inited {
		return s
	}
	for node := format.Link(a.mem, base); node != base; node = format.Link(a.mem, node) {
		size := format.Size(a.mem, node)
		s.FreeBlocks++
		s.FreeUnits += uint64(size)
		s.LargestFree = max(s.LargestFree, size)
	}
	return s
}
