package slab_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/ostree/pkg/slab"
)

func TestSlab(t *testing.T) {
	Convey("Given a fresh Slab[int]", t, func() {
		s := slab.New[int]()

		Convey("handle zero is reserved and reads as the zero value", func() {
			So(slab.NIL, ShouldEqual, slab.Handle(0))
			So(*s.Get(slab.NIL), ShouldEqual, 0)
			So(s.Valid(slab.NIL), ShouldBeFalse)
			So(s.Len(), ShouldEqual, 0)
		})

		Convey("Alloc returns distinct, valid handles", func() {
			a, err := s.Alloc(1)
			So(err, ShouldBeNil)
			b, err := s.Alloc(2)
			So(err, ShouldBeNil)

			So(a, ShouldNotEqual, b)
			So(a, ShouldNotEqual, slab.NIL)
			So(*s.Get(a), ShouldEqual, 1)
			So(*s.Get(b), ShouldEqual, 2)
			So(s.Len(), ShouldEqual, 2)
		})

		Convey("Free releases a slot for reuse without disturbing others", func() {
			a, err := s.Alloc(1)
			So(err, ShouldBeNil)
			b, err := s.Alloc(2)
			So(err, ShouldBeNil)
			s.Free(a)

			So(s.Valid(a), ShouldBeFalse)
			So(s.Valid(b), ShouldBeTrue)
			So(*s.Get(b), ShouldEqual, 2)

			c, err := s.Alloc(3)
			So(err, ShouldBeNil)
			So(s.Valid(c), ShouldBeTrue)
		})

		Convey("Get mutates through the returned pointer in place", func() {
			a, err := s.Alloc(10)
			So(err, ShouldBeNil)
			*s.Get(a) = 99
			So(*s.Get(a), ShouldEqual, 99)
		})

		Convey("growing past a page's capacity allocates a new page", func() {
			handles := make([]slab.Handle, 40)
			for i := range handles {
				h, err := s.Alloc(i)
				So(err, ShouldBeNil)
				handles[i] = h
			}
			So(s.Pages(), ShouldBeGreaterThanOrEqualTo, 2)
			for i, h := range handles {
				So(*s.Get(h), ShouldEqual, i)
			}
		})

		Convey("freeing every slot in a page detaches it, and Alloc keeps working", func() {
			handles := make([]slab.Handle, 32)
			for i := range handles {
				h, err := s.Alloc(i)
				So(err, ShouldBeNil)
				handles[i] = h
			}
			pagesBefore := s.Pages()
			for _, h := range handles {
				s.Free(h)
			}
			So(s.Pages(), ShouldBeLessThan, pagesBefore)

			// Page 0 still has free slots, so the next Alloc is served from
			// it; the detached table index waits until a new page is needed.
			fresh, err := s.Alloc(123)
			So(err, ShouldBeNil)
			So(*s.Get(fresh), ShouldEqual, 123)
		})
	})
}
