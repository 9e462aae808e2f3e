package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in   uint64
		want int64
	}{
		{0, MinLimit},
		{100, MinLimit},
		{MinLimit - 1, MinLimit},
		{MinLimit + 1, MinLimit},
		{MinLimit, MinLimit},
		{3*MinLimit + 123, 3 * MinLimit},
		{1 << 40, MaxLimit},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, int64(clampLimit(tt.in)), "clampLimit(%d)", tt.in)
	}
}

func TestSystemLimit(t *testing.T) {
	_, err := SystemLimit(0)
	require.ErrorIs(t, err, ErrBadLimit)
	_, err = SystemLimit(1.5)
	require.ErrorIs(t, err, ErrBadLimit)

	n, err := SystemLimit(0.01)
	if err != nil {
		t.Skipf("system memory not available: %v", err)
	}
	assert.GreaterOrEqual(t, n, MinLimit)
	assert.LessOrEqual(t, int64(n), MaxLimit)
	assert.Zero(t, n%MinLimit)

	p, err := NewBreak(min(n, 1<<20))
	require.NoError(t, err)
	assert.Equal(t, min(n, 1<<20), p.Limit())
}
