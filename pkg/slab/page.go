package slab

import "github.com/flier/ostree/pkg/bitset"

// pageSizes is the geometric growth schedule for page capacity: the Nth
// page ever created (0-indexed) gets pageSizes[N], clamped to the last
// entry for every page after that. The cap, 65536, is exactly 2^16 so
// that a page's slot indices fit in the 16-bit slot field of a Handle.
var pageSizes = [...]int{32, 256, 1024, 4096, 8192, 65536}

func pageSizeFor(ordinal int) int {
	if ordinal < len(pageSizes) {
		return pageSizes[ordinal]
	}
	return pageSizes[len(pageSizes)-1]
}

type page[T any] struct {
	index int
	slots []T
	live  *bitset.Set
	count int // live slots in this page
	hint  int // next_free_line: where to resume the live-bitmap scan
}

func newPage[T any](index, capacity int) *page[T] {
	return &page[T]{
		index: index,
		slots: make([]T, capacity),
		live:  bitset.New(capacity),
	}
}

func (p *page[T]) capacity() int { return len(p.slots) }
func (p *page[T]) full() bool    { return p.count == p.capacity() }
func (p *page[T]) empty() bool   { return p.count == 0 }

// allocSlot finds a free slot via trailing-zero-count scanning of the
// live bitmap, starting at the page's free-line hint, and marks it live.
func (p *page[T]) allocSlot() (slot int, ok bool) {
	slot, ok = p.live.FirstZero(p.capacity(), p.hint)
	if !ok {
		return 0, false
	}
	p.live.Set(slot)
	p.count++
	p.hint = slot + 1
	return slot, true
}

// freeSlot releases slot back to the page. Returns whether the page
// transitioned from full to non-full.
func (p *page[T]) freeSlot(slot int) (wasFull bool) {
	wasFull = p.full()
	p.live.Clear(slot)
	p.count--
	if slot < p.hint {
		p.hint = slot
	}
	var zero T
	p.slots[slot] = zero
	return wasFull
}
