package alloc

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kralloc/heap"
	"github.com/joshuapare/kralloc/internal/format"
)

// testLimit is the provider size used by tests unless they need exhaustion.
const testLimit = 1 << 20

// newTestArena creates an arena over a fresh Break provider. Zero fields of
// cfg get the usual defaults.
func newTestArena(t testing.TB, cfg Config) *Arena {
	t.Helper()
	if cfg.Provider == nil {
		p, err := heap.NewBreak(testLimit)
		require.NoError(t, err)
		cfg.Provider = p
	}
	a, err := New(&cfg)
	require.NoError(t, err)
	return a
}

// newSmallArena creates an arena that grows 64 units at a time, which keeps
// hand-computed layouts short.
func newSmallArena(t testing.TB, policy Policy) *Arena {
	t.Helper()
	return newTestArena(t, Config{Policy: policy, MinGrowUnits: 64})
}

// assertInvariants checks the arena invariants and the conservation property.
func assertInvariants(t testing.TB, a *Arena) {
	t.Helper()
	require.NoError(t, a.Check())
	s := a.Stats()
	require.Equal(t, s.GrownUnits, s.LiveUnits+s.FreeUnits,
		"units under management must equal units grown")
}

// allBlocks returns every block in address order.
func allBlocks(t testing.TB, a *Arena) []Block {
	t.Helper()
	var out []Block
	require.NoError(t, a.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	}))
	return out
}

// freeBlocks returns the free blocks in address order.
func freeBlocks(t testing.TB, a *Arena) []Block {
	t.Helper()
	var out []Block
	for _, b := range allBlocks(t, a) {
		if b.Free {
			out = append(out, b)
		}
	}
	return out
}

// mustAlloc allocates or fails the test.
func mustAlloc(t testing.TB, a *Arena, n uint32) Ptr {
	t.Helper()
	p, _, err := a.Alloc(n)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	return p
}

// headerUnit returns the header unit of the block at p.
func headerUnit(p Ptr) Ref {
	return refOf(p)
}

// assertNoOverlap checks that the header-inclusive ranges of live blocks are
// disjoint.
func assertNoOverlap(t testing.TB, a *Arena, live map[Ptr]uint32) {
	t.Helper()
	type span struct{ lo, hi int }
	spans := make([]span, 0, len(live))
	for p := range live {
		n, err := a.UsableSize(p)
		require.NoError(t, err)
		lo := int(p) - format.UnitSize
		spans = append(spans, span{lo, int(p) + n})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].lo < spans[j].lo })
	for i := 1; i < len(spans); i++ {
		require.LessOrEqual(t, spans[i-1].hi, spans[i].lo,
			"blocks [%d,%d) and [%d,%d) overlap", spans[i-1].lo, spans[i-1].hi, spans[i].lo, spans[i].hi)
	}
}
