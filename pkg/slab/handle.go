// Package slab implements a dense, handle-addressed allocator: a growable
// table of fixed-capacity pages, each with a live-slot bitmap, so that
// values of a single type occupy contiguous memory and can be addressed
// by a small stable integer rather than a heap pointer.
//
// This is grounded on the same "cheating the reaper" arena idea the
// teacher's pkg/arena documents, generalized to support individual
// per-slot free/reuse instead of only bulk reset: pkg/arena's
// bump-allocate-then-Reset model cannot express "free slot 17, then let
// a later Alloc reuse it while slots 0-16 and 18+ stay live", which is
// exactly what the red-black tree core needs after every delete.
package slab

import "fmt"

// Handle is a stable integer identifying a slot in a [Slab]. The zero
// value, NIL, never names a live slot: it is reserved at construction
// and reads through it are defined to return the zero value of the
// slab's element type.
type Handle uint32

// NIL is the sentinel handle. It is handle zero, permanently reserved.
const NIL Handle = 0

const slotBits = 16
const slotMask = uint32(1)<<slotBits - 1

func newHandle(page, slot int) Handle {
	return Handle(uint32(page)<<slotBits | (uint32(slot) & slotMask))
}

func (h Handle) page() int { return int(uint32(h) >> slotBits) }
func (h Handle) slot() int { return int(uint32(h) & slotMask) }

// String renders h as page:slot, or "nil" for the sentinel handle.
func (h Handle) String() string {
	if h == NIL {
		return "nil"
	}
	return fmt.Sprintf("%d:%d", h.page(), h.slot())
}
