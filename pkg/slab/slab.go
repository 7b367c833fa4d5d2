package slab

import (
	"errors"
	"fmt"

	"github.com/flier/ostree/internal/debug"
	"github.com/flier/ostree/pkg/bitset"
)

// ErrExhausted is returned by [Slab.Alloc] when growing the page table
// would overflow the page-index encoding of a [Handle] (handle.go's
// slotBits split): no further page can be addressed.
var ErrExhausted = errors.New("slab: handle space exhausted")

// maxPages is the number of page-table indices a Handle can encode
// (indices 0 through maxPages-1): the page field occupies the bits above
// slotBits in a 32-bit Handle.
const maxPages = 1 << (32 - slotBits)

// Slab is a dense, handle-addressed allocator for values of type T.
//
// A Slab owns every slot it hands out a [Handle] for; handles are never
// reused while live, but a freed handle's slot may be reused by a later
// Alloc. The zero Slab is not ready to use — call [New].
type Slab[T any] struct {
	pages     []*page[T] // nil entries are table slots awaiting reuse
	freeIdx   []int      // page-table indices freed back to the table
	full      *bitset.Set
	created   int // total pages ever created, for the growth schedule
	pageHint  int // next_free_line at page-table granularity
	liveCount int
}

// New returns a ready-to-use Slab with handle zero (NIL) permanently
// reserved and never allocated.
func New[T any]() *Slab[T] {
	s := &Slab[T]{full: bitset.New(0)}
	_, _ = s.addPage() // page 0, always within range; slot 0 reserved below.
	p := s.pages[0]
	p.live.Set(0)
	p.count = 1
	p.hint = 1
	return s
}

// Len returns the number of live (allocated, not yet freed) slots.
func (s *Slab[T]) Len() int { return s.liveCount }

// Cap returns the total slot capacity currently backed by pages.
func (s *Slab[T]) Cap() (n int) {
	for _, p := range s.pages {
		if p != nil {
			n += p.capacity()
		}
	}
	return
}

// Pages returns the number of live page-table entries.
func (s *Slab[T]) Pages() (n int) {
	for _, p := range s.pages {
		if p != nil {
			n++
		}
	}
	return
}

// Alloc returns a fresh handle whose slot holds value. It never reuses a
// live handle; it may reuse a slot freed by an earlier [Slab.Free].
// Returns [ErrExhausted] if a new page is required and the page table
// has no room left in the handle encoding; value is not stored and the
// Slab is left unchanged.
func (s *Slab[T]) Alloc(value T) (Handle, error) {
	idx, ok := s.full.FirstZero(len(s.pages), s.pageHint)
	if !ok {
		var err error
		idx, err = s.addPage()
		if err != nil {
			return NIL, err
		}
	}
	p := s.pages[idx]

	slot, ok := p.allocSlot()
	if !ok {
		// The full-bitmap hint was stale; this page filled up between
		// scans in a single-threaded caller only via a logic bug, since
		// the engine is not re-entrant. Force a fresh page rather than
		// silently corrupting the scan invariant.
		var err error
		idx, err = s.addPage()
		if err != nil {
			return NIL, err
		}
		p = s.pages[idx]
		slot, _ = p.allocSlot()
	}
	if p.full() {
		s.full.Set(idx)
	}
	s.pageHint = idx

	p.slots[slot] = value
	s.liveCount++

	h := newHandle(idx, slot)
	debug.Log(nil, "alloc", "%v page=%d slot=%d", h, idx, slot)
	return h, nil
}

// Free marks h's slot dead. If the owning page becomes empty, it is
// detached from the table and its table index is queued for reuse by
// the next page the table creates.
func (s *Slab[T]) Free(h Handle) {
	if h == NIL {
		return
	}
	idx, slot := h.page(), h.slot()
	if idx >= len(s.pages) || s.pages[idx] == nil {
		panic(fmt.Sprintf("slab: free of unallocated handle %v", h))
	}
	p := s.pages[idx]

	wasFull := p.freeSlot(slot)
	s.liveCount--
	if wasFull {
		s.full.Clear(idx)
	}

	if p.empty() {
		s.pages[idx] = nil
		s.freeIdx = append(s.freeIdx, idx)
		// A detached slot has no page to allocate into, even though it
		// isn't "full" in the usual sense: set its bit so FirstZero skips
		// it until addPage reuses the index for a real page. freeIdx, not
		// the full bitmap, is what tracks reusability here.
		s.full.Set(idx)
	}
	debug.Log(nil, "free", "%v page=%d slot=%d", h, idx, slot)
}

// Get returns a pointer to h's slot. Reads through [NIL] return a
// pointer to a permanently zero value. The pointer is stable for the
// lifetime of the slot: pages never reallocate their backing array.
func (s *Slab[T]) Get(h Handle) *T {
	idx, slot := h.page(), h.slot()
	if idx >= len(s.pages) || s.pages[idx] == nil {
		panic(fmt.Sprintf("slab: read of unallocated handle %v", h))
	}
	return &s.pages[idx].slots[slot]
}

// Valid reports whether h currently names a live slot.
func (s *Slab[T]) Valid(h Handle) bool {
	if h == NIL {
		return false
	}
	idx, slot := h.page(), h.slot()
	if idx >= len(s.pages) || s.pages[idx] == nil {
		return false
	}
	return s.pages[idx].live.Test(slot)
}

// MaxPageOccupancy returns the live/capacity ratio of the largest page
// currently backing the slab, or 0 if it holds no pages. Callers use
// this to gauge whether the page growth schedule is a good fit for
// their workload's size.
func (s *Slab[T]) MaxPageOccupancy() float64 {
	var biggest *page[T]
	for _, p := range s.pages {
		if p == nil {
			continue
		}
		if biggest == nil || p.capacity() > biggest.capacity() {
			biggest = p
		}
	}
	if biggest == nil {
		return 0
	}
	return float64(biggest.count) / float64(biggest.capacity())
}

// addPage creates a new page, reusing a freed table index if one is
// queued, and returns its table index. Returns [ErrExhausted], leaving
// the Slab unchanged, if the index required would not fit a Handle's
// page field.
func (s *Slab[T]) addPage() (int, error) {
	reuse := len(s.freeIdx) > 0

	var idx int
	if reuse {
		idx = s.freeIdx[len(s.freeIdx)-1]
	} else {
		idx = len(s.pages)
	}
	if idx >= maxPages {
		return 0, ErrExhausted
	}

	capacity := pageSizeFor(s.created)
	s.created++

	if reuse {
		s.freeIdx = s.freeIdx[:len(s.freeIdx)-1]
		s.pages[idx] = newPage[T](idx, capacity)
	} else {
		s.pages = append(s.pages, newPage[T](idx, capacity))
	}
	s.full.Grow(idx + 1)
	// A reused index carries the "detached" marker Free set on it (see
	// Free); a fresh page is never full on arrival, so clear it here
	// rather than leaving FirstZero blind to the page this call created.
	s.full.Clear(idx)
	debug.Log(nil, "grow", "page=%d capacity=%d", idx, capacity)
	return idx, nil
}
