package slab

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/ostree/pkg/bitset"
)

// TestAllocSkipsDetachedPageIndex exercises the sequence Free's
// page-detach path and Alloc's FirstZero scan must agree on: a page
// table index whose page was freed and nilled out must not be handed
// back to Alloc as if a page still lived there. Page 0's slot 0 is
// permanently reserved (New) and never freed, so page 0 itself can
// never empty; the second page created is used instead.
func TestAllocSkipsDetachedPageIndex(t *testing.T) {
	Convey("A Slab whose first page fills exactly, spilling one handle into a second page", t, func() {
		s := New[int]()
		firstPageRoom := s.pages[0].capacity() - 1 // slot 0 is already reserved

		for i := 0; i < firstPageRoom; i++ {
			_, err := s.Alloc(i)
			So(err, ShouldBeNil)
		}
		So(s.pages[0].full(), ShouldBeTrue)

		spill, err := s.Alloc(-1)
		So(err, ShouldBeNil)
		So(spill.page(), ShouldEqual, 1)
		So(s.Pages(), ShouldEqual, 2)

		Convey("freeing the lone handle in the second page detaches it", func() {
			s.Free(spill)
			So(s.pages[1], ShouldBeNil)

			Convey("the next Alloc creates a fresh page instead of reusing the detached index live", func() {
				h, err := s.Alloc(99)
				So(err, ShouldBeNil)
				So(*s.Get(h), ShouldEqual, 99)
			})
		})
	})
}

// TestAllocExhaustion exercises the page-table boundary addPage enforces
// without actually growing to 65536 real pages: it forges the
// bookkeeping Alloc consults (the full-page bitmap and table length)
// directly, via this white-box (package slab, not slab_test) test file.
func TestAllocExhaustion(t *testing.T) {
	Convey("A Slab whose page table already spans the Handle encoding's limit", t, func() {
		s := New[int]()
		s.pages = make([]*page[int], maxPages)
		s.full = bitset.New(maxPages)
		for i := 0; i < maxPages; i++ {
			s.full.Set(i)
		}

		Convey("Alloc reports ErrExhausted instead of growing past the limit", func() {
			_, err := s.Alloc(1)
			So(err, ShouldEqual, ErrExhausted)
			So(s.Len(), ShouldEqual, 0)
		})
	})
}
