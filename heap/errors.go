package heap

import "errors"

var (
	// ErrNoMemory indicates the provider cannot move the break that far.
	ErrNoMemory = errors.New("heap: address space exhausted")

	// ErrShrink indicates a negative Sbrk delta. Memory is never returned.
	ErrShrink = errors.New("heap: break cannot move down")

	// ErrClosed indicates use of a provider after Close.
	ErrClosed = errors.New("heap: provider closed")

	// ErrNotSupported indicates the provider is unavailable on this platform.
	ErrNotSupported = errors.New("heap: not supported on this platform")

	// ErrBadLimit indicates a limit outside [MinLimit, MaxLimit].
	ErrBadLimit = errors.New("heap: limit out of range")
)
