//go:build linux || darwin

package heap

import (
	"errors"

	"golang.org/x/sys/unix"
)

// NewMapped reserves limit bytes of anonymous memory.
func NewMapped(limit int) (*Mapped, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	mem, err := unix.Mmap(-1, 0, limit, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &Mapped{region{mem: mem}}, nil
}

// Close unmaps the region. Slices obtained from Bytes must not be used
// afterwards.
func (m *Mapped) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.brk = 0
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
