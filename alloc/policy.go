package alloc

import (
	"fmt"
	"strings"

	"github.com/joshuapare/kralloc/internal/format"
)

// Policy chooses which free block satisfies a request.
//
// Search returns the free node that precedes the chosen block on the list, so
// the arena can unlink or split it, and false when no block of at least units
// exists. Implementations must not modify the list.
type Policy interface {
	Search(l List, units uint32) (prev Ref, ok bool)
	String() string
}

// List is a read-only view of an arena's free list handed to policies.
type List struct {
	a *Arena
}

// Base returns the sentinel node.
func (l List) Base() Ref { return base }

// Cursor returns the node the previous operation left the search at.
func (l List) Cursor() Ref { return l.a.cursor }

// Next returns the free node following r.
func (l List) Next(r Ref) Ref { return format.Link(l.a.mem, r) }

// Size returns the size in units of free node r.
func (l List) Size(r Ref) uint32 { return format.Size(l.a.mem, r) }

// NextFit resumes the search at the cursor and takes the first block that
// fits. This is the K&R rule.
type NextFit struct{}

func (NextFit) Search(l List, units uint32) (Ref, bool) {
	return firstFrom(l, l.Cursor(), units)
}

func (NextFit) String() string { return "next" }

// FirstFit always searches from the lowest address.
type FirstFit struct{}

func (FirstFit) Search(l List, units uint32) (Ref, bool) {
	return firstFrom(l, l.Base(), units)
}

func (FirstFit) String() string { return "first" }

// BestFit takes the smallest block that fits, stopping early on an exact fit.
// Ties go to the block met first walking from the cursor.
type BestFit struct{}

func (BestFit) Search(l List, units uint32) (Ref, bool) {
	start := l.Cursor()
	prev := start
	var best Ref
	var bestSize uint32
	found := false
	for {
		node := l.Next(prev)
		if size := l.Size(node); size >= units && (!found || size < bestSize) {
			best, bestSize, found = prev, size, true
			if size == units {
				break
			}
		}
		if node == start {
			break
		}
		prev = node
	}
	return best, found
}

func (BestFit) String() string { return "best" }

// firstFrom walks one lap starting after start. start itself is examined last.
func firstFrom(l List, start Ref, units uint32) (Ref, bool) {
	prev := start
	for {
		node := l.Next(prev)
		if l.Size(node) >= units {
			return prev, true
		}
		if node == start {
			return 0, false
		}
		prev = node
	}
}

// ParsePolicy maps "next", "first" and "best" (with or without a "-fit"
// suffix) to a Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.TrimSuffix(strings.ToLower(name), "-fit") {
	case "next", "":
		return NextFit{}, nil
	case "first":
		return FirstFit{}, nil
	case "best":
		return BestFit{}, nil
	}
	return nil, fmt.Errorf("unknown policy %q: %w", name, ErrBadConfig)
}
