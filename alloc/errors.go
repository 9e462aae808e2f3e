package alloc

import "errors"

var (
	// ErrNoMemory indicates the provider could not supply the address space a
	// request needed. The free list is left intact.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrInvalidRelease indicates Free or Realloc got a pointer that was not
	// returned by Alloc, or was already released.
	ErrInvalidRelease = errors.New("alloc: invalid release")

	// ErrTooLarge indicates the request cannot be expressed in units.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrCorrupt indicates an arena invariant does not hold.
	ErrCorrupt = errors.New("alloc: arena corrupt")

	// ErrForeignBreak indicates something other than the arena moved the
	// provider's break.
	ErrForeignBreak = errors.New("alloc: provider break moved externally")

	// ErrBadConfig indicates an unusable Config value.
	ErrBadConfig = errors.New("alloc: bad config")
)
