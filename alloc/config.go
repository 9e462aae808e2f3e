package alloc

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/kralloc/heap"
	"github.com/joshuapare/kralloc/internal/format"
)

// DefaultGrowUnits is the smallest growth step, in units. Small requests are
// rounded up to it so the provider is not asked for a few bytes at a time.
const DefaultGrowUnits = 4096

// Config controls how an Arena obtains and hands out memory.
type Config struct {
	// Provider supplies address space. Its break must be 0 and the arena must
	// be its only user. nil selects a heap.Break of heap.DefaultLimit bytes.
	Provider heap.Provider

	// Policy picks the free block for a request. nil selects NextFit.
	Policy Policy

	// MinGrowUnits is the growth granularity. 0 selects DefaultGrowUnits.
	MinGrowUnits uint32

	// DisableGuard skips the GuardMagic check in Free.
	DisableGuard bool

	// Logger receives grow and release diagnostics. nil discards them.
	Logger *slog.Logger
}

// DefaultConfig is used when New is called with a nil config.
var DefaultConfig = Config{
	Policy:       NextFit{},
	MinGrowUnits: DefaultGrowUnits,
}

func (c Config) withDefaults() (Config, error) {
	if c.Provider == nil {
		p, err := heap.NewBreak(heap.DefaultLimit)
		if err != nil {
			return c, err
		}
		c.Provider = p
	}
	if c.Policy == nil {
		c.Policy = NextFit{}
	}
	if c.MinGrowUnits == 0 {
		c.MinGrowUnits = DefaultGrowUnits
	}
	if c.MinGrowUnits >= format.MaxUnits {
		return c, fmt.Errorf("MinGrowUnits %d: %w", c.MinGrowUnits, ErrBadConfig)
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}
