package alloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kralloc/internal/format"
)

func TestCalloc_Zeroes(t *testing.T) {
	a := newSmallArena(t, NextFit{})

	p, buf, err := a.Alloc(64)
	require.NoError(t, err)
	for i := range buf {
		buf[i] = 0xFF
	}
	require.NoError(t, a.Free(p))

	q, buf, err := a.Calloc(8, 8)
	require.NoError(t, err)
	assert.Equal(t, p, q, "the released block is reused")
	assert.Len(t, buf, 64)
	for i, v := range buf {
		require.Zero(t, v, "byte %d", i)
	}
	assertInvariants(t, a)
}

func TestCalloc_Overflow(t *testing.T) {
	a := newSmallArena(t, NextFit{})

	_, _, err := a.Calloc(math.MaxUint32, 2)
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, a.Stats().GrowCalls)
}

func TestRealloc(t *testing.T) {
	t.Run("nil behaves like alloc", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		p, buf, err := a.Realloc(Nil, 10)
		require.NoError(t, err)
		assert.NotEqual(t, Nil, p)
		assert.Len(t, buf, 16)
	})

	t.Run("fits in place", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		p := mustAlloc(t, a, 20) // 24 usable bytes
		q, buf, err := a.Realloc(p, 24)
		require.NoError(t, err)
		assert.Equal(t, p, q)
		assert.Len(t, buf, 24)

		q, _, err = a.Realloc(p, 1)
		require.NoError(t, err)
		assert.Equal(t, p, q, "blocks are not shrunk")
		assertInvariants(t, a)
	})

	t.Run("moves and copies", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		p, buf, err := a.Alloc(16)
		require.NoError(t, err)
		copy(buf, "0123456789abcdef")
		mustAlloc(t, a, 8) // pin the space below p

		q, buf, err := a.Realloc(p, 100)
		require.NoError(t, err)
		assert.NotEqual(t, p, q)
		assert.Equal(t, "0123456789abcdef", string(buf[:16]))

		_, err = a.Bytes(p)
		require.ErrorIs(t, err, ErrInvalidRelease, "the old block was released")
		assertInvariants(t, a)
	})

	t.Run("failure keeps the original", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		p, buf, err := a.Alloc(8)
		require.NoError(t, err)
		copy(buf, "keepme!!")

		_, _, err = a.Realloc(p, testLimit)
		require.ErrorIs(t, err, ErrNoMemory)

		got, err := a.Bytes(p)
		require.NoError(t, err)
		assert.Equal(t, "keepme!!", string(got))
		assertInvariants(t, a)
	})

	t.Run("invalid pointer", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		mustAlloc(t, a, 8)
		_, _, err := a.Realloc(Ptr(3), 8)
		require.ErrorIs(t, err, ErrInvalidRelease)
	})

	t.Run("failed release of the old block frees the new one", func(t *testing.T) {
		a := newSmallArena(t, NextFit{})
		require.NoError(t, a.Grow(64))
		mustAlloc(t, a, 8)       // 63
		pb := mustAlloc(t, a, 8) // 61
		pc := mustAlloc(t, a, 8) // 59
		require.NoError(t, a.Free(pb))
		require.Equal(t, Ref(59), headerUnit(pc))

		// Stretch c over the free block above it so its release is refused.
		format.SetSize(a.mem, headerUnit(pc), 3)
		before := a.Stats()

		_, _, err := a.Realloc(pc, 100)
		require.ErrorIs(t, err, ErrInvalidRelease)

		s := a.Stats()
		assert.Equal(t, before.LiveBlocks, s.LiveBlocks, "the moved-to block must be released")
		assert.Equal(t, before.LiveUnits, s.LiveUnits)

		// The space the move used is free again and handed out once more.
		p := mustAlloc(t, a, 100)
		assert.Equal(t, Ref(45), headerUnit(p))
	})
}

func TestUsableSize(t *testing.T) {
	a := newSmallArena(t, NextFit{})
	tests := []struct {
		n    uint32
		want int
	}{
		{0, 8},
		{1, 8},
		{8, 8},
		{9, 16},
		{100, 104},
	}
	for _, tt := range tests {
		p := mustAlloc(t, a, tt.n)
		got, err := a.UsableSize(p)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "alloc(%d)", tt.n)
	}
}
