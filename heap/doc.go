// Package heap supplies the address space an allocator carves blocks from.
//
// A Provider behaves like the classic sbrk(2) primitive: the managed region
// starts at offset 0 and only ever grows by moving the break upwards. Offsets
// below the break stay valid and keep their contents for the lifetime of the
// provider, so a caller may hold on to slices of Bytes() across calls to Sbrk.
//
// # Implementations
//
// Break: a preallocated Go byte slice. Portable and the default.
//
// Mapped: an anonymous private memory mapping created with mmap(2) on Linux
// and macOS. Pages are committed lazily by the kernel as the break advances
// and touched. Must be closed by its owner.
//
// # Sizing
//
// SystemLimit derives a limit from the free memory currently reported by the
// operating system, which is useful when the caller has no better bound.
//
// # Thread Safety
//
// Providers are not thread-safe. The allocator owning a provider serializes
// access to it.
package heap
