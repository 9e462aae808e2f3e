package heap

import (
	"fmt"

	sigar "github.com/cloudfoundry/gosigar"
)

// SystemLimit returns fraction of the memory the operating system currently
// reports as available, rounded down to a 4 KiB multiple and clamped to
// [MinLimit, MaxLimit].
func SystemLimit(fraction float64) (int, error) {
	if fraction <= 0 || fraction > 1 {
		return 0, fmt.Errorf("fraction %v not in (0, 1]: %w", fraction, ErrBadLimit)
	}
	mem := sigar.Mem{}
	if err := mem.Get(); err != nil {
		return 0, fmt.Errorf("heap: read system memory: %w", err)
	}
	free := mem.ActualFree
	if free == 0 {
		free = mem.Free
	}
	return clampLimit(uint64(float64(free) * fraction)), nil
}

func clampLimit(n uint64) int {
	n &^= MinLimit - 1
	switch {
	case n < MinLimit:
		return MinLimit
	case n > uint64(MaxLimit):
		n = uint64(MaxLimit)
	}
	if n > uint64(^uint(0)>>1) {
		return int(^uint(0) >> 1 &^ (MinLimit - 1))
	}
	return int(n)
}
