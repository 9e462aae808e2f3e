package heap

import "fmt"

const (
	// MinLimit is the smallest region a provider may manage.
	MinLimit = 4096

	// MaxLimit is the largest region a provider may manage (4 GiB). Offsets
	// handed out by allocators are 32-bit.
	MaxLimit int64 = 1 << 32

	// DefaultLimit is the region size used when the caller does not pick one.
	DefaultLimit = 64 << 20
)

// Provider is the environment collaborator that supplies raw address space.
type Provider interface {
	// Sbrk moves the break up by delta bytes and returns the previous break.
	// On failure it returns -1 and an error wrapping ErrNoMemory (or
	// ErrShrink/ErrClosed); the break is left where it was.
	Sbrk(delta int) (int, error)

	// Bytes returns the region between offset 0 and the current break.
	Bytes() []byte
}

// region holds the sbrk bookkeeping shared by every provider.
type region struct {
	mem []byte // full reservation; len(mem) is the limit
	brk int
}

func (r *region) Sbrk(delta int) (int, error) {
	if r.mem == nil {
		return -1, ErrClosed
	}
	if delta < 0 {
		return -1, ErrShrink
	}
	if delta > len(r.mem)-r.brk {
		return -1, fmt.Errorf("sbrk(%d) at break %d of %d: %w", delta, r.brk, len(r.mem), ErrNoMemory)
	}
	old := r.brk
	r.brk += delta
	return old, nil
}

func (r *region) Bytes() []byte {
	return r.mem[:r.brk:r.brk]
}

// Len returns the current break.
func (r *region) Len() int { return r.brk }

// Limit returns the largest break the provider can reach.
func (r *region) Limit() int { return len(r.mem) }

func checkLimit(limit int) error {
	if limit < MinLimit || int64(limit) > MaxLimit {
		return fmt.Errorf("%d not in [%d, %d]: %w", limit, MinLimit, MaxLimit, ErrBadLimit)
	}
	return nil
}
