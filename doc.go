// Package kralloc is a process-wide free-list allocator in the style of the
// K&R storage allocator.
//
// The functions in this package share one arena, created on first use with
// alloc.DefaultConfig and protected by a mutex held for the whole call:
//
//	p, buf, err := kralloc.Malloc(64)
//	if err != nil {
//	    return err
//	}
//	copy(buf, data)
//	defer kralloc.Free(p)
//
// Call Configure before the first allocation to choose the provider, search
// policy or growth granularity. Programs that want several independent
// arenas, or no locking, use package alloc directly.
//
// Pointers are byte offsets into the arena, not Go pointers. Payload slices
// returned by Malloc, Calloc, Realloc and Bytes stay valid until the block is
// released or moved by Realloc.
package kralloc
