// Package alloc implements a K&R style free-list allocator over a flat arena.
//
// # Overview
//
// The arena is a contiguous region obtained from a heap.Provider, addressed by
// offsets instead of pointers. Every block, free or allocated, starts with an
// 8-byte header holding its size in units (one unit is one header, 8 bytes).
// Free blocks are chained into a single circular list kept in address order.
// A zero-sized sentinel at unit 0 is always on the list and never handed out.
//
// # Operations
//
//   - Alloc(n): round n up to units (+1 for the header), search the free list
//     with the configured Policy, split the chosen block from its tail, and
//     grow the arena once when nothing fits.
//   - Free(p): find the free-list gap that straddles p and coalesce the block
//     with the free neighbours on either side.
//   - Grow(units): extend the arena by max(units, MinGrowUnits) and release
//     the new region into the list, merging with free space below it.
//
// # Usage Example
//
//	a, err := alloc.New(nil)
//	if err != nil {
//	    return err
//	}
//
//	p, buf, err := a.Alloc(248)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	// Later, give the block back
//	err = a.Free(p)
//
// # Search Policies
//
// NextFit is the classic rule: the search resumes at the cursor left by the
// previous call, so consecutive requests walk the list round-robin. FirstFit
// always starts at the sentinel. BestFit walks the whole list and takes the
// smallest block that fits.
//
// # Guards
//
// Allocated headers carry GuardMagic in the word a free block uses for its
// link. Free rejects pointers whose header lacks it with ErrInvalidRelease,
// which turns most double frees and foreign pointers into an error instead of
// a corrupted list. Config.DisableGuard skips the check and keeps only the
// bounds and overlap checks performed during the boundary search.
//
// # Thread Safety
//
// Arena instances are not thread-safe. Callers must hold a lock for the whole
// duration of every call; the root kralloc package does this for the
// process-wide arena.
//
// # Related Packages
//
//   - github.com/joshuapare/kralloc/heap: address-space providers
//   - github.com/joshuapare/kralloc/internal/format: header layout
package alloc
