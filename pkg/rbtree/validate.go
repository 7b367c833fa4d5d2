package rbtree

import "fmt"

// Validate walks the whole tree and returns the first structural
// invariant violation it finds, or nil if the tree is well-formed. It
// is a supplemented debugging aid (not part of the core engine
// surface) meant for use in tests and in debug builds, not on a hot
// path: it is O(n).
func (t *Tree[T]) Validate() error {
	if t.root == Nil {
		if t.length != 0 {
			return fmt.Errorf("rbtree: Validate: root is Nil but length=%d", t.length)
		}
		return nil
	}
	if t.colourOf(t.root) != black {
		return fmt.Errorf("rbtree: Validate: root is not black")
	}

	seenAnchors := make(map[Handle]bool)
	count, _, err := t.validateSubtree(t.root, Nil, t.primary, seenAnchors, true)
	if err != nil {
		return err
	}
	if count != t.length {
		return fmt.Errorf("rbtree: Validate: counted %d values, Len()=%d", count, t.length)
	}
	for root, anchor := range t.satelliteAnchor {
		if !seenAnchors[anchor] {
			return fmt.Errorf("rbtree: Validate: satelliteAnchor[%v]=%v is stale (anchor not reachable)", root, anchor)
		}
	}
	if t.linkMode == Successor {
		if err := t.validateSuccessorChain(); err != nil {
			return err
		}
	}
	return nil
}

// validateSubtree checks BST order under cmp, red-black coherence, and
// size augmentation for the subtree rooted at h, whose parent is
// expected to be parent. isMain distinguishes the main tree (where an
// anchor with link != NIL descends into a satellite subtree) from a
// satellite subtree (where every node must have link == NIL). Returns
// the number of logical values in the subtree and its black-height.
func (t *Tree[T]) validateSubtree(h, parent Handle, cmp Comparator[T], seenAnchors map[Handle]bool, isMain bool) (count, blackHeight int, err error) {
	if h == Nil {
		return 0, 1, nil
	}
	n := t.at(h)
	if n.parent != parent {
		return 0, 0, fmt.Errorf("rbtree: Validate: %v.parent=%v, expected %v", h, n.parent, parent)
	}
	if n.colour == red {
		if t.colourOf(n.left) == red || t.colourOf(n.right) == red {
			return 0, 0, fmt.Errorf("rbtree: Validate: red node %v has a red child", h)
		}
	}

	if n.left != Nil && cmp(t.at(n.left).value, n.value) >= 0 {
		return 0, 0, fmt.Errorf("rbtree: Validate: left child of %v is not strictly less", h)
	}
	if n.right != Nil && cmp(t.at(n.right).value, n.value) <= 0 {
		return 0, 0, fmt.Errorf("rbtree: Validate: right child of %v is not strictly greater", h)
	}

	leftCount, leftBH, err := t.validateSubtree(n.left, h, cmp, seenAnchors, isMain)
	if err != nil {
		return 0, 0, err
	}
	rightCount, rightBH, err := t.validateSubtree(n.right, h, cmp, seenAnchors, isMain)
	if err != nil {
		return 0, 0, err
	}
	if leftBH != rightBH {
		return 0, 0, fmt.Errorf("rbtree: Validate: black-height mismatch at %v (%d vs %d)", h, leftBH, rightBH)
	}

	self := 1
	if isMain && t.linkMode == Satellite && n.link != Nil {
		seenAnchors[h] = true
		if t.at(n.link).parent != Nil {
			return 0, 0, fmt.Errorf("rbtree: Validate: satellite root %v has non-nil parent", n.link)
		}
		satCount, _, err := t.validateSubtree(n.link, Nil, t.satellite, seenAnchors, false)
		if err != nil {
			return 0, 0, err
		}
		if satCount < 2 {
			return 0, 0, fmt.Errorf("rbtree: Validate: anchor %v has a collapsed (size<2) satellite subtree", h)
		}
		self = satCount
	} else if !isMain && n.link != Nil {
		return 0, 0, fmt.Errorf("rbtree: Validate: satellite node %v has a non-nil link", h)
	}

	wantSize := uint32(leftCount + rightCount + self)
	if n.size != wantSize {
		return 0, 0, fmt.Errorf("rbtree: Validate: %v.size=%d, want %d", h, n.size, wantSize)
	}

	bh := leftBH
	if n.colour == black {
		bh++
	}
	return leftCount + rightCount + self, bh, nil
}

// validateSuccessorChain walks the link chain from the minimum and
// checks it visits every node exactly once in ascending order.
func (t *Tree[T]) validateSuccessorChain() error {
	h := t.subtreeMin(t.root)
	seen := 0
	var prev T
	first := true
	for h != Nil {
		if !first && t.primary(t.at(h).value, prev) <= 0 {
			return fmt.Errorf("rbtree: Validate: successor chain out of order at %v", h)
		}
		prev = t.at(h).value
		first = false
		seen++
		h = t.at(h).link
	}
	if seen != t.length {
		return fmt.Errorf("rbtree: Validate: successor chain visited %d nodes, Len()=%d", seen, t.length)
	}
	return nil
}
