//go:build !linux && !darwin

package heap

// NewMapped is unavailable on this platform; use NewBreak.
func NewMapped(limit int) (*Mapped, error) {
	return nil, ErrNotSupported
}

// Close is a no-op.
func (m *Mapped) Close() error {
	return nil
}
