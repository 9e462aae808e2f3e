//go:build linux || darwin

package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapped_SbrkAndClose(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap test in short mode")
	}
	m, err := NewMapped(1 << 20)
	require.NoError(t, err)

	old, err := m.Sbrk(4096)
	require.NoError(t, err)
	assert.Equal(t, 0, old)

	data := m.Bytes()
	require.Len(t, data, 4096)
	data[0], data[4095] = 0xde, 0xad
	assert.Equal(t, byte(0xad), m.Bytes()[4095])

	_, err = m.Sbrk(1 << 20)
	require.ErrorIs(t, err, ErrNoMemory)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close(), "second Close is a no-op")

	_, err = m.Sbrk(8)
	require.ErrorIs(t, err, ErrClosed)
}
