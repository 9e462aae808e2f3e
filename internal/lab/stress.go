package lab

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/joshuapare/kralloc/alloc"
)

// Arena is what Stress drives: allocation plus resizing and invariant checks.
type Arena interface {
	Allocator
	Realloc(p alloc.Ptr, nbytes uint32) (alloc.Ptr, []byte, error)
	Bytes(p alloc.Ptr) ([]byte, error)
	Check() error
}

// StressOptions configures Stress. Zero fields get defaults.
type StressOptions struct {
	Ops         int    // Operations to run (default 10000)
	Seed        uint64 // PRNG seed
	MaxSize     uint32 // Largest request in bytes (default 1024)
	FreePercent int    // Share of operations that release a block (default 40)
}

// StressResult counts what a Stress run did.
type StressResult struct {
	Ops       int
	Allocs    int
	Reallocs  int
	Frees     int
	Exhausted int // requests refused with alloc.ErrNoMemory
	PeakLive  int
}

type liveBlock struct {
	p alloc.Ptr
	n uint32
}

// Stress runs a seeded random mix of Alloc, Realloc and Free against a,
// fills every block with a pattern derived from its address and verifies the
// pattern before the block is moved or released. a.Check runs after every
// operation. Running out of memory is counted, not reported as an error.
//
// Blocks still live at the end are released.
func Stress(a Arena, opts StressOptions) (StressResult, error) {
	if opts.Ops <= 0 {
		opts.Ops = 10000
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = 1024
	}
	if opts.FreePercent <= 0 || opts.FreePercent >= 100 {
		opts.FreePercent = 40
	}

	var res StressResult
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9E3779B97F4A7C15))
	var live []liveBlock

	err := func() error {
		for op := range opts.Ops {
			res.Ops++
			roll := rng.IntN(100)
			switch {
			case len(live) > 0 && roll < opts.FreePercent:
				i := rng.IntN(len(live))
				b := live[i]
				live[i] = live[len(live)-1]
				live = live[:len(live)-1]
				if err := verify(a, b.p, b.n, b.p); err != nil {
					return fmt.Errorf("op %d: %w", op, err)
				}
				if err := a.Free(b.p); err != nil {
					return fmt.Errorf("op %d: free %#x: %w", op, uint32(b.p), err)
				}
				res.Frees++

			case len(live) > 0 && roll < opts.FreePercent+10:
				i := rng.IntN(len(live))
				b := live[i]
				if err := verify(a, b.p, b.n, b.p); err != nil {
					return fmt.Errorf("op %d: %w", op, err)
				}
				n := uint32(rng.IntN(int(opts.MaxSize)))
				p, buf, err := a.Realloc(b.p, n)
				if errors.Is(err, alloc.ErrNoMemory) {
					res.Exhausted++
					break
				}
				if err != nil {
					return fmt.Errorf("op %d: realloc %#x: %w", op, uint32(b.p), err)
				}
				// The old contents survive up to the smaller of the two sizes.
				keep := min(b.n, n)
				if err := verify(a, p, keep, b.p); err != nil {
					return fmt.Errorf("op %d: realloc lost data: %w", op, err)
				}
				pattern(p, buf[:n])
				live[i] = liveBlock{p: p, n: n}
				res.Reallocs++

			default:
				n := uint32(rng.IntN(int(opts.MaxSize)))
				p, buf, err := a.Alloc(n)
				if errors.Is(err, alloc.ErrNoMemory) {
					res.Exhausted++
					break
				}
				if err != nil {
					return fmt.Errorf("op %d: alloc(%d): %w", op, n, err)
				}
				pattern(p, buf[:n])
				live = append(live, liveBlock{p: p, n: n})
				res.Allocs++
			}

			res.PeakLive = max(res.PeakLive, len(live))
			if err := a.Check(); err != nil {
				return fmt.Errorf("op %d: %w", op, err)
			}
		}
		return nil
	}()

	for _, b := range live {
		err = errors.Join(err, a.Free(b.p))
	}
	return res, err
}

func pattern(p alloc.Ptr, buf []byte) {
	for i := range buf {
		buf[i] = patternByte(p, i)
	}
}

func patternByte(p alloc.Ptr, i int) byte {
	return byte(uint32(p)>>3) ^ byte(i*7)
}

// verify checks the first n bytes of the block at p against the pattern
// written for address seed.
func verify(a Arena, p alloc.Ptr, n uint32, seed alloc.Ptr) error {
	buf, err := a.Bytes(p)
	if err != nil {
		return fmt.Errorf("block %#x: %w", uint32(p), err)
	}
	for i := range int(n) {
		if buf[i] != patternByte(seed, i) {
			return fmt.Errorf("block %#x: byte %d clobbered", uint32(p), i)
		}
	}
	return nil
}
