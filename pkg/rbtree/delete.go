package rbtree

import (
	"github.com/flier/ostree/internal/debug"
	"github.com/flier/ostree/pkg/slab"
)

// Remove deletes the value addressed by h. If h is a main-tree anchor
// (link != NIL), the delete descends once into its satellite subtree
// and removes that subtree's current root value instead, keeping the
// anchor alive (spec.md §4.3.4 third bullet). If h lies in a satellite
// subtree (directly or via that redirect), and the subtree
// collapses to a single survivor, that survivor is spliced back into
// the main tree in the anchor's place (spec.md §4.3.4 first bullet).
//
// Deletion splices the structural in-order successor when h has two
// children, then copies the successor's payload into h's own slot and
// frees the successor's slot instead — so h itself remains valid and
// now addresses the successor's value (spec.md §4.3.4, "handle identity
// follows value").
func (t *Tree[T]) Remove(h Handle) error {
	const op = "Remove"
	if err := t.checkPoison(op); err != nil {
		return err
	}
	if !t.slab.Valid(h) || h == Nil {
		return newError(op, NotFound, "handle %v is not live", h)
	}

	if t.linkMode == Satellite {
		if link := t.at(h).link; link != Nil {
			h = link // redirect: delete the group's current representative.
		}
	}

	anchor, localRoot, inSatellite := t.localContext(h)

	oldRoot := Nil
	if inSatellite {
		oldRoot = *localRoot
	}

	t.deleteNode(localRoot, h)

	if inSatellite {
		t.syncSatelliteAnchor(anchor, localRoot, oldRoot)
		t.decrementSizePath(anchor)

		if newRoot := *localRoot; newRoot != Nil && t.at(newRoot).size == 1 {
			t.collapseSatellite(anchor, newRoot)
		}
	}

	t.bumpVersion()
	t.length--
	debug.Log(nil, op, "%v removed", h)
	return nil
}

// RemoveByKey removes the first value (by satellite order, if
// duplicates exist) equal to v under the primary comparator. Reports
// whether a value was removed.
func (t *Tree[T]) RemoveByKey(v T) (bool, error) {
	const op = "RemoveByKey"
	if err := t.checkPoison(op); err != nil {
		return false, err
	}
	h, err := t.findByKey(v)
	if err != nil {
		return false, t.poison(err)
	}
	if h == Nil {
		return false, nil
	}
	if err := t.Remove(h); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAtRank removes and returns the value at 0-indexed rank k.
func (t *Tree[T]) RemoveAtRank(k int) (v T, err error) {
	const op = "RemoveAtRank"
	if err := t.checkPoison(op); err != nil {
		return v, err
	}
	if k < 0 || k >= t.length {
		return v, newError(op, OutOfRange, "k=%d len=%d", k, t.length)
	}
	h := t.handleAtRankFrom(t.root, k)
	if h == Nil {
		return v, newError(op, NotFound, "rank %d resolved to no handle", k)
	}
	v = t.at(h).value
	if err := t.Remove(h); err != nil {
		return v, err
	}
	return v, nil
}

// localContext classifies h's local tree: the main tree, or some
// duplicate group's satellite subtree. Returns the group's anchor (Nil
// if h is in the main tree), a pointer to the local root handle, and
// whether h is within a satellite subtree at all.
func (t *Tree[T]) localContext(h Handle) (anchor Handle, root *Handle, inSatellite bool) {
	x := h
	for t.at(x).parent != Nil {
		x = t.at(x).parent
	}
	if x == t.root {
		return Nil, &t.root, false
	}
	anchor = t.satelliteAnchor[x]
	return anchor, &t.at(anchor).link, true
}

// deleteNode removes z (which may have 0, 1, or 2 children) from the
// subtree rooted at *root, preserving z's handle per the value-copy
// rule documented on [Tree.Remove].
//
// When z has two children, its structural successor y is an ordinary
// main-tree node in the common case, but nothing stops the successor
// search from landing on a duplicate-group anchor (y.link != Nil):
// anchors are structurally indistinguishable from any other main-tree
// node. y's link must move to z along with its value in that case, or
// the group becomes unreachable from the main tree and
// t.satelliteAnchor is left pointing at y's now-freed slot.
func (t *Tree[T]) deleteNode(root *Handle, z Handle) {
	if t.at(z).left != Nil && t.at(z).right != Nil {
		y := t.subtreeMin(t.at(z).right)

		value := t.at(y).value
		link := t.at(y).link

		t.spliceOut(root, y)

		t.at(z).value = value
		switch {
		case t.linkMode == Successor:
			t.at(z).link = link
		case t.linkMode == Satellite && link != Nil:
			t.at(z).link = link
			t.satelliteAnchor[link] = z
		}
		t.slab.Free(y)
		return
	}
	t.spliceOut(root, z)
	t.slab.Free(z)
}

// spliceOut removes n, which has at most one child, from the subtree
// rooted at *root: relinks the successor chain around n (successor
// mode only), transplants n's single child into n's place, decrements
// size along the path to *root, and runs the delete fixup if n was
// black. n's slot is left allocated; the caller frees it.
func (t *Tree[T]) spliceOut(root *Handle, n Handle) {
	child := t.at(n).left
	if child == Nil {
		child = t.at(n).right
	}
	parent := t.at(n).parent

	if t.linkMode == Successor {
		if pred := t.structuralPredecessor(n); pred != Nil {
			t.at(pred).link = t.at(n).link
		}
	}

	wasBlack := t.colourOf(n) == black
	t.transplant(root, n, child)
	t.decrementSizePath(parent)

	if wasBlack {
		t.deleteFixup(root, child, parent)
	}
}

// decrementSizePath decrements the size of from and every ancestor of
// from up to (and including) the local root, reflecting one fewer
// logical element somewhere within from's subtree.
func (t *Tree[T]) decrementSizePath(from Handle) {
	for x := from; x != Nil; x = t.at(x).parent {
		t.at(x).size--
	}
}

// collapseSatellite implements spec.md §4.3.4: when a duplicate group's
// satellite subtree shrinks to a single survivor, that survivor is
// spliced back into the main tree in place of the anchor, which is
// freed.
func (t *Tree[T]) collapseSatellite(anchor, survivor Handle) {
	old := *t.at(anchor)

	switch {
	case old.parent == Nil:
		t.root = survivor
	case t.at(old.parent).left == anchor:
		t.setLeft(old.parent, survivor)
	default:
		t.setRight(old.parent, survivor)
	}
	if old.left != Nil {
		t.setParent(old.left, survivor)
	}
	if old.right != Nil {
		t.setParent(old.right, survivor)
	}

	s := t.at(survivor)
	s.parent, s.left, s.right = old.parent, old.left, old.right
	s.colour = old.colour
	s.size = old.size

	delete(t.satelliteAnchor, survivor)
	t.slab.Free(anchor)
	debug.Log(nil, "collapse", "anchor %v replaced by surviving %v", anchor, survivor)
}

// Clear empties the tree by replacing its slab with a fresh one: every
// page that backed the old nodes is released, and no handle issued
// before Clear remains valid.
func (t *Tree[T]) Clear() {
	t.slab = slab.New[node[T]]()
	t.root = Nil
	t.length = 0
	if t.linkMode == Satellite {
		t.satelliteAnchor = make(map[Handle]Handle)
	}
	t.bumpVersion()
}
