package lab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kralloc/alloc"
	"github.com/joshuapare/kralloc/heap"
)

func newArena(t *testing.T, limit int, cfg alloc.Config) *alloc.Arena {
	t.Helper()
	p, err := heap.NewBreak(limit)
	require.NoError(t, err)
	cfg.Provider = p
	a, err := alloc.New(&cfg)
	require.NoError(t, err)
	return a
}

func TestBestFitSearch(t *testing.T) {
	tests := []struct {
		name     string
		cfg      alloc.Config
		wantCode int
	}{
		{"best fit", alloc.Config{Policy: alloc.BestFit{}}, CodePass},
		{"best fit, page growth", alloc.Config{Policy: alloc.BestFit{}, MinGrowUnits: 512}, CodePass},
		{"next fit", alloc.Config{Policy: alloc.NextFit{}}, CodeMismatch},
		{"first fit", alloc.Config{Policy: alloc.FirstFit{}}, CodeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newArena(t, heap.DefaultLimit, tt.cfg)

			res, err := BestFitSearch(a)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Equal(t, tt.wantCode == CodePass, res.Passed())

			require.Len(t, res.Initial, Segments)
			require.Len(t, res.Fragmented, Segments)
			require.Len(t, res.Blocks, Blocks)
			for i, s := range res.Initial {
				assert.False(t, s.Free, "segment %d", i)
				assert.Equal(t, SegmentSize, s.Size)
			}
			freed := 0
			for _, s := range res.Fragmented {
				if s.Free {
					freed++
				}
			}
			assert.Equal(t, 4+3+2+1, freed)
			for i, b := range res.Blocks {
				assert.Equal(t, SegmentSize*(i+1), b.Size)
			}

			// Everything is released again.
			require.NoError(t, a.Check())
			s := a.Stats()
			assert.Zero(t, s.LiveBlocks)
			assert.Equal(t, 1, s.FreeBlocks)
		})
	}
}

func TestBigAlloc_AfterBestFit(t *testing.T) {
	a := newArena(t, heap.DefaultLimit, alloc.Config{Policy: alloc.BestFit{}})

	bf, err := BestFitSearch(a)
	require.NoError(t, err)
	require.True(t, bf.Passed())

	res, err := BigAlloc(a)
	require.NoError(t, err)
	assert.Equal(t, CodePass, res.Code)
	assert.Equal(t, 2*PageSize, res.Delta)
	assert.Equal(t, int(res.P1)-int(res.P2), res.Delta)
	require.NoError(t, a.Check())
	assert.Zero(t, a.Stats().LiveBlocks)
}

func TestBigAlloc_FreshArena(t *testing.T) {
	for _, policy := range []alloc.Policy{alloc.NextFit{}, alloc.FirstFit{}, alloc.BestFit{}} {
		t.Run(policy.String(), func(t *testing.T) {
			a := newArena(t, heap.DefaultLimit, alloc.Config{Policy: policy})
			res, err := BigAlloc(a)
			require.NoError(t, err)
			assert.True(t, res.Passed(), "delta %d", res.Delta)
		})
	}
}

func TestBigAlloc_ForeignBreakIsAnError(t *testing.T) {
	p, err := heap.NewBreak(heap.DefaultLimit)
	require.NoError(t, err)
	_, err = p.Sbrk(16)
	require.NoError(t, err)
	a, err := alloc.New(&alloc.Config{Provider: p})
	require.NoError(t, err)

	res, err := BigAlloc(a)
	require.ErrorIs(t, err, alloc.ErrForeignBreak)
	assert.NotEqual(t, CodeFirstAlloc, res.Code)
	assert.False(t, res.Passed())
}

func TestBigAlloc_Exhaustion(t *testing.T) {
	t.Run("first allocation", func(t *testing.T) {
		a := newArena(t, heap.MinLimit, alloc.Config{})
		res, err := BigAlloc(a)
		require.NoError(t, err)
		assert.Equal(t, CodeFirstAlloc, res.Code)
		assert.Equal(t, alloc.Nil, res.P1)
	})

	t.Run("second allocation", func(t *testing.T) {
		a := newArena(t, 3*PageSize, alloc.Config{MinGrowUnits: 1024})
		res, err := BigAlloc(a)
		require.NoError(t, err)
		assert.Equal(t, CodeSecondAlloc, res.Code)
		assert.NotEqual(t, alloc.Nil, res.P1)
		assert.Equal(t, alloc.Nil, res.P2)
		assert.Zero(t, a.Stats().LiveBlocks, "the first block is released")
	})
}

func TestStress(t *testing.T) {
	for _, policy := range []alloc.Policy{alloc.NextFit{}, alloc.FirstFit{}, alloc.BestFit{}} {
		t.Run(policy.String(), func(t *testing.T) {
			a := newArena(t, heap.DefaultLimit, alloc.Config{Policy: policy})
			res, err := Stress(a, StressOptions{Ops: 3000, Seed: 42})
			require.NoError(t, err)
			assert.Equal(t, 3000, res.Ops)
			assert.Equal(t, res.Ops, res.Allocs+res.Reallocs+res.Frees+res.Exhausted)
			assert.Positive(t, res.PeakLive)
			assert.Zero(t, res.Exhausted)

			require.NoError(t, a.Check())
			assert.Zero(t, a.Stats().LiveBlocks)
		})
	}
}

func TestStress_Deterministic(t *testing.T) {
	run := func() StressResult {
		a := newArena(t, heap.DefaultLimit, alloc.Config{})
		res, err := Stress(a, StressOptions{Ops: 500, Seed: 7})
		require.NoError(t, err)
		return res
	}
	assert.Equal(t, run(), run())
}

func TestStress_Exhaustion(t *testing.T) {
	a := newArena(t, 64<<10, alloc.Config{})
	res, err := Stress(a, StressOptions{Ops: 2000, Seed: 1, MaxSize: 4096})
	require.NoError(t, err)
	assert.Positive(t, res.Exhausted)
	require.NoError(t, a.Check())
}
