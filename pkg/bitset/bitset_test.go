package bitset_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/ostree/pkg/bitset"
)

func TestSet(t *testing.T) {
	Convey("Given an empty Set", t, func() {
		s := bitset.New(128)

		Convey("every bit starts clear", func() {
			So(s.Test(0), ShouldBeFalse)
			So(s.Test(127), ShouldBeFalse)
		})

		Convey("Set/Clear/Test round-trip", func() {
			s.Set(5)
			So(s.Test(5), ShouldBeTrue)
			s.Clear(5)
			So(s.Test(5), ShouldBeFalse)
		})

		Convey("FirstZero finds the lowest clear bit", func() {
			for i := 0; i < 10; i++ {
				s.Set(i)
			}
			i, ok := s.FirstZero(128, 0)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 10)
		})

		Convey("FirstZero respects the hint and wraps once", func() {
			for i := 0; i < 128; i++ {
				s.Set(i)
			}
			s.Clear(3)
			s.Clear(100)

			i, ok := s.FirstZero(128, 50)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 100)

			i, ok = s.FirstZero(128, 101)
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 3)
		})

		Convey("FirstZero fails when every addressed bit is set", func() {
			for i := 0; i < 64; i++ {
				s.Set(i)
			}
			_, ok := s.FirstZero(64, 0)
			So(ok, ShouldBeFalse)
		})

		Convey("PopCount counts set bits within a bound", func() {
			s.Set(0)
			s.Set(63)
			s.Set(64)
			So(s.PopCount(64), ShouldEqual, 2)
			So(s.PopCount(65), ShouldEqual, 3)
		})
	})

	Convey("Grow extends addressable range without disturbing bits", t, func() {
		s := bitset.New(4)
		s.Set(2)
		s.Grow(200)
		So(s.Len(), ShouldEqual, 200)
		So(s.Test(2), ShouldBeTrue)
		So(s.Test(150), ShouldBeFalse)
	})
}
