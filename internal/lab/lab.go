// Package lab holds the allocator lab scenarios: a fragmented best-fit
// search, a multi-page allocation and a seeded random workload. Scenarios
// report numeric codes (0 is a pass) together with the address tables they
// built, so callers can print them.
package lab

import (
	"errors"
	"fmt"

	"github.com/joshuapare/kralloc/alloc"
	"github.com/joshuapare/kralloc/internal/format"
)

// Scenario geometry. The checks below depend on these values.
const (
	PageSize    = 4096
	HeaderSize  = format.UnitSize
	SegmentSize = 256
	Segments    = PageSize / SegmentSize
	Blocks      = 4
)

// Scenario result codes.
const (
	CodePass        = 0
	CodeMismatch    = 1
	CodeFirstAlloc  = 2
	CodeSecondAlloc = 3
)

// Allocator is the part of an arena the fixed scenarios need.
type Allocator interface {
	Alloc(nbytes uint32) (alloc.Ptr, []byte, error)
	Free(p alloc.Ptr) error
}

// Slot records one allocation of a scenario. Size includes the header.
type Slot struct {
	Ptr  alloc.Ptr
	Size int
	Free bool
}

// BestFitResult is the outcome of BestFitSearch.
type BestFitResult struct {
	Code       int
	Initial    []Slot // segments as allocated
	Fragmented []Slot // segments after the runs were released
	Blocks     []Slot // blocks[i] spans i+1 segments
}

// Passed reports whether the blocks landed in the released runs.
func (r BestFitResult) Passed() bool { return r.Code == CodePass }

// segmentSize is the payload of one segment.
func segmentSize() int { return SegmentSize - HeaderSize }

// blockSize is the payload of a block spanning x segments.
func blockSize(x int) int { return SegmentSize*x - HeaderSize }

// BestFitSearch fragments the arena into free runs of Blocks, Blocks-1, ...,
// 1 segments, each followed by a live segment, then allocates one block per
// run from the largest down. Under a best-fit policy every block reuses the
// run of its own size; the blocks are checked against the lowest segment of
// each run, where a whole-run block starts.
//
// All allocations are released before returning.
func BestFitSearch(a Allocator) (BestFitResult, error) {
	var res BestFitResult
	segs := make([]Slot, Segments)
	blocks := make([]Slot, Blocks)

	for i := range segs {
		p, _, err := a.Alloc(uint32(segmentSize()))
		if err != nil {
			return res, fmt.Errorf("segment %d: %w", i, err)
		}
		segs[i] = Slot{Ptr: p, Size: SegmentSize}
	}
	res.Initial = append([]Slot(nil), segs...)

	k := 0
	for j := Blocks; j > 0; j-- {
		for i := range j {
			if err := a.Free(segs[k+i].Ptr); err != nil {
				return res, fmt.Errorf("release segment %d: %w", k+i, err)
			}
			segs[k+i].Free = true
		}
		k += j + 1
	}
	res.Fragmented = append([]Slot(nil), segs...)

	var errs []error
	for i := Blocks; i > 0; i-- {
		p, _, err := a.Alloc(uint32(blockSize(i)))
		if err != nil {
			errs = append(errs, fmt.Errorf("block %d: %w", i-1, err))
			continue
		}
		blocks[i-1] = Slot{Ptr: p, Size: SegmentSize * i}
	}
	res.Blocks = blocks

	res.Code = CodeMismatch
	if blocks[0].Ptr == segs[12].Ptr &&
		blocks[1].Ptr == segs[10].Ptr &&
		blocks[2].Ptr == segs[7].Ptr &&
		blocks[3].Ptr == segs[3].Ptr {
		res.Code = CodePass
	}

	for i := range segs {
		if !segs[i].Free {
			errs = append(errs, a.Free(segs[i].Ptr))
		}
	}
	for i := range blocks {
		if blocks[i].Ptr != alloc.Nil {
			errs = append(errs, a.Free(blocks[i].Ptr))
		}
	}
	return res, errors.Join(errs...)
}

// BigAllocResult is the outcome of BigAlloc.
type BigAllocResult struct {
	Code   int
	P1, P2 alloc.Ptr
	Delta  int // P1 - P2 in bytes
}

// Passed reports whether both two-page blocks were placed a block apart.
func (r BigAllocResult) Passed() bool { return r.Code == CodePass }

// BigAlloc allocates two blocks of two pages each. The first one is carved
// from space already on the free list, extended if needed; the second one
// must come out of a single contiguous region, directly below the first.
//
// Running out of memory is reported through the code; any other allocation
// failure is returned as an error. Both blocks are released before returning.
func BigAlloc(a Allocator) (BigAllocResult, error) {
	res := BigAllocResult{Code: CodeMismatch}
	sz := uint32(2*PageSize - HeaderSize)

	p1, _, err := a.Alloc(sz)
	if errors.Is(err, alloc.ErrNoMemory) {
		res.Code = CodeFirstAlloc
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("first block: %w", err)
	}
	res.P1 = p1

	p2, _, err := a.Alloc(sz)
	if errors.Is(err, alloc.ErrNoMemory) {
		res.Code = CodeSecondAlloc
		return res, a.Free(p1)
	}
	if err != nil {
		return res, errors.Join(fmt.Errorf("second block: %w", err), a.Free(p1))
	}
	res.P2 = p2
	res.Delta = int(p1) - int(p2)

	if res.Delta == 2*PageSize {
		res.Code = CodePass
	}
	return res, errors.Join(a.Free(p1), a.Free(p2))
}
