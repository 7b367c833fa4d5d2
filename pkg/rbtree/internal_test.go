package rbtree

import (
	"cmp"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/ostree/pkg/opt"
)

type dupPair struct {
	key int
	tag string
}

// TestUpdateValueWritesAnchorMirror is a white-box companion to
// tree_test.go's TestUpdateValueMirrorsSatelliteAnchor: the main-tree
// anchor a satellite root mirrors into is never returned by any public
// accessor (FindByKey resolves through it to the satellite subtree), so
// only a same-package test can confirm UpdateValue actually writes the
// anchor's copy and not just the satellite root's own slot.
func TestUpdateValueWritesAnchorMirror(t *testing.T) {
	Convey("Given a duplicate group with its main-tree anchor known by handle", t, func() {
		tr := New(Config[dupPair]{
			LinkMode:        Satellite,
			AllowDuplicates: true,
			Primary:         func(a, b dupPair) int { return cmp.Compare(a.key, b.key) },
			Satellite:       opt.Some[Comparator[dupPair]](func(a, b dupPair) int { return cmp.Compare(a.tag, b.tag) }),
		})

		_, err := tr.InsertByKey(dupPair{25, "A"})
		So(err, ShouldBeNil)
		_, err = tr.InsertByKey(dupPair{25, "B"})
		So(err, ShouldBeNil)

		root, err := tr.FindByKey(dupPair{key: 25})
		So(err, ShouldBeNil)

		anchor, ok := tr.satelliteAnchor[root]
		So(ok, ShouldBeTrue)
		So(tr.at(anchor).value.tag, ShouldEqual, "A")

		Convey("UpdateValue at the satellite root also rewrites the anchor's mirrored copy", func() {
			So(tr.UpdateValue(root, dupPair{25, "A*"}), ShouldBeNil)

			So(tr.at(root).value.tag, ShouldEqual, "A*")
			So(tr.at(anchor).value.tag, ShouldEqual, "A*")
		})
	})
}
