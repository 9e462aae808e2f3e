package kralloc

import (
	"errors"
	"sync"

	"github.com/joshuapare/kralloc/alloc"
)

// ErrConfigured is returned by Configure once the default arena exists.
var ErrConfigured = errors.New("kralloc: default arena already in use")

var (
	mu    sync.Mutex
	arena *alloc.Arena
	cfg   *alloc.Config
)

// get returns the default arena, creating it on first use. mu must be held.
func get() (*alloc.Arena, error) {
	if arena != nil {
		return arena, nil
	}
	a, err := alloc.New(cfg)
	if err != nil {
		return nil, err
	}
	arena = a
	return arena, nil
}

// Configure sets the configuration of the default arena. It must be called
// before any other function of this package.
func Configure(c alloc.Config) error {
	mu.Lock()
	defer mu.Unlock()

	if arena != nil {
		return ErrConfigured
	}
	a, err := alloc.New(&c)
	if err != nil {
		return err
	}
	cfg = &c
	arena = a
	return nil
}

// Malloc allocates at least n bytes from the default arena.
func Malloc(n uint32) (alloc.Ptr, []byte, error) {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return alloc.Nil, nil, err
	}
	return a.Alloc(n)
}

// Free releases a block returned by Malloc, Calloc or Realloc. Free(alloc.Nil)
// is a no-op.
func Free(p alloc.Ptr) error {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return err
	}
	return a.Free(p)
}

// Calloc allocates zeroed room for n elements of size bytes.
func Calloc(n, size uint32) (alloc.Ptr, []byte, error) {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return alloc.Nil, nil, err
	}
	return a.Calloc(n, size)
}

// Realloc resizes the block at p, moving it if needed.
func Realloc(p alloc.Ptr, n uint32) (alloc.Ptr, []byte, error) {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return alloc.Nil, nil, err
	}
	return a.Realloc(p, n)
}

// Bytes returns the payload of the live block at p.
func Bytes(p alloc.Ptr) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return nil, err
	}
	return a.Bytes(p)
}

// Stats returns the default arena's counters.
func Stats() (alloc.Stats, error) {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return alloc.Stats{}, err
	}
	return a.Stats(), nil
}

// Check verifies the default arena's invariants.
func Check() error {
	mu.Lock()
	defer mu.Unlock()

	a, err := get()
	if err != nil {
		return err
	}
	return a.Check()
}
