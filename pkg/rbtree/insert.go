package rbtree

import "github.com/flier/ostree/internal/debug"

// InsertByKey inserts v in primary-comparator order. If an equal value
// already exists: when duplicates are forbidden, the insert fails with
// DuplicateKey and the tree is left strictly unchanged; otherwise v
// joins that key's satellite group, ordered by the satellite
// comparator, which must never return zero for two distinct values
// (spec.md §3.2/§3.3/§4.3.1).
func (t *Tree[T]) InsertByKey(v T) (Handle, error) {
	const op = "InsertByKey"
	if err := t.checkPoison(op); err != nil {
		return Nil, err
	}

	h, err := t.allocNode(op, node[T]{size: 1, colour: red, value: v})
	if err != nil {
		return Nil, err
	}

	if t.root == Nil {
		t.setColour(h, black)
		t.root = h
		t.bumpVersion()
		t.length++
		debug.Log(nil, op, "%v is the new root", h)
		return h, nil
	}

	var path []Handle
	x := t.root
	for x != Nil {
		path = append(path, x)
		t.at(x).size++ // speculative; rolled back on failure.

		c := t.primary(v, t.at(x).value)
		switch {
		case c < 0:
			x = t.at(x).left
		case c > 0:
			x = t.at(x).right
		default:
			if !t.allowDup {
				t.rollbackSizes(path)
				t.slab.Free(h)
				return Nil, newError(op, DuplicateKey, "value already present")
			}

			promoted := t.at(x).link == Nil
			anchor := x
			if promoted {
				var perr error
				anchor, perr = t.promote(op, x)
				if perr != nil {
					t.rollbackSizes(path)
					t.slab.Free(h)
					return Nil, perr
				}
			}
			if err := t.insertIntoSatellite(anchor, h, v); err != nil {
				if promoted {
					t.undoPromote(anchor, x)
				}
				t.rollbackSizes(path)
				t.slab.Free(h)
				return Nil, t.poison(err)
			}
			t.bumpVersion()
			t.length++
			debug.Log(nil, op, "%v joins duplicate group at %v", h, anchor)
			return h, nil
		}
	}

	y := path[len(path)-1]
	t.at(h).parent = y
	left := t.primary(v, t.at(y).value) < 0
	if left {
		t.setLeft(y, h)
	} else {
		t.setRight(y, h)
	}
	if t.linkMode == Successor {
		if left {
			t.linkInsertLeft(h, y)
		} else {
			t.linkInsertRight(h, y)
		}
	}
	t.insertFixup(&t.root, h)
	t.bumpVersion()
	t.length++
	debug.Log(nil, op, "%v attached under %v", h, y)
	return h, nil
}

// rollbackSizes undoes the speculative size increments made while
// descending path during a failed insert.
func (t *Tree[T]) rollbackSizes(path []Handle) {
	for _, h := range path {
		t.at(h).size--
	}
}

// linkInsertLeft maintains the successor chain when x is attached as
// y's left child: x becomes y's old predecessor's successor, and x's
// own successor is y (spec.md §4.3.3).
func (t *Tree[T]) linkInsertLeft(x, y Handle) {
	pred := t.structuralPredecessor(x)
	t.at(x).link = y
	if pred != Nil {
		t.at(pred).link = x
	}
}

// linkInsertRight maintains the successor chain when x is attached as
// y's right child: x takes y's old successor, and y's new successor is
// x (spec.md §4.3.3).
func (t *Tree[T]) linkInsertRight(x, y Handle) {
	succ := t.structuralSuccessor(x)
	t.at(y).link = x
	t.at(x).link = succ
}

// promote implements spec.md §3.2 case 1: P (=x) has no satellite yet.
// It allocates a fresh main-tree anchor M as a copy of P's structural
// links, splices M into P's old position, and demotes P into the root
// of a new, empty-but-for-itself satellite subtree. Returns M. Fails
// with ResourceExhausted, leaving p untouched, if no handle remains for
// the anchor.
func (t *Tree[T]) promote(op string, p Handle) (anchor Handle, err error) {
	old := *t.at(p)

	anchor, err = t.allocNode(op, node[T]{
		left:   old.left,
		right:  old.right,
		parent: old.parent,
		size:   old.size,
		colour: old.colour,
		value:  old.value,
	})
	if err != nil {
		return Nil, err
	}

	switch {
	case old.parent == Nil:
		t.root = anchor
	case t.at(old.parent).left == p:
		t.setLeft(old.parent, anchor)
	default:
		t.setRight(old.parent, anchor)
	}
	if old.left != Nil {
		t.setParent(old.left, anchor)
	}
	if old.right != Nil {
		t.setParent(old.right, anchor)
	}
	if t.linkMode == Successor {
		// Unreachable in practice: AllowDuplicates requires Satellite
		// mode (enforced in New). Kept for symmetry with demote/collapse.
		t.retargetSuccessorChain(p, anchor)
	}

	n := t.at(p)
	n.parent, n.left, n.right = Nil, Nil, Nil
	n.size = 1
	n.colour = black

	t.at(anchor).link = p
	t.satelliteAnchor[p] = anchor

	debug.Log(nil, "promote", "%v demoted under new anchor %v", p, anchor)
	return anchor, nil
}

// undoPromote reverses promote when the satellite insert that was
// meant to follow it fails, restoring p to anchor's old position and
// freeing anchor, so a failed insert leaves no trace (spec.md §8
// scenario 6).
func (t *Tree[T]) undoPromote(anchor, p Handle) {
	old := *t.at(anchor)

	switch {
	case old.parent == Nil:
		t.root = p
	case t.at(old.parent).left == anchor:
		t.setLeft(old.parent, p)
	default:
		t.setRight(old.parent, p)
	}
	if old.left != Nil {
		t.setParent(old.left, p)
	}
	if old.right != Nil {
		t.setParent(old.right, p)
	}

	n := t.at(p)
	n.parent, n.left, n.right = old.parent, old.left, old.right
	n.size = old.size
	n.colour = old.colour

	delete(t.satelliteAnchor, p)
	t.slab.Free(anchor)
	debug.Log(nil, "undo-promote", "%v restored, anchor %v freed", p, anchor)
}

// retargetSuccessorChain updates the one predecessor pointing at old to
// point at fresh instead, used when a node's identity changes position
// (promote/collapse) in a successor-mode tree.
func (t *Tree[T]) retargetSuccessorChain(old, fresh Handle) {
	pred := t.structuralPredecessor(fresh)
	if pred != Nil {
		t.at(pred).link = fresh
	}
	_ = old
}

// insertIntoSatellite inserts candidate (holding value v) into the
// satellite subtree rooted at anchor.link, ordered by the satellite
// comparator. Fails with InvariantViolated, without mutating the
// subtree, if the comparator returns zero against any node on the
// descent path (spec.md §3.3/§4.3.1).
func (t *Tree[T]) insertIntoSatellite(anchor, candidate Handle, v T) error {
	rootPtr := &t.at(anchor).link
	oldRoot := *rootPtr

	var path []Handle
	x := *rootPtr
	var y Handle = Nil
	leftOfY := false
	for x != Nil {
		c := t.satellite(v, t.at(x).value)
		if c == 0 {
			return newError("InsertByKey", InvariantViolated,
				"satellite comparator returned 0 for distinct values")
		}
		path = append(path, x)
		y = x
		if c < 0 {
			leftOfY = true
			x = t.at(x).left
		} else {
			leftOfY = false
			x = t.at(x).right
		}
	}

	for _, p := range path {
		t.at(p).size++
	}
	t.at(candidate).parent = y
	if y == Nil {
		*rootPtr = candidate
	} else if leftOfY {
		t.setLeft(y, candidate)
	} else {
		t.setRight(y, candidate)
	}
	t.insertFixup(rootPtr, candidate)
	t.syncSatelliteAnchor(anchor, rootPtr, oldRoot)
	return nil
}

// InsertByRank inserts v at the 0-indexed position pos, where pos == Len
// appends. This mode never creates satellites; duplicate values at
// distinct positions are always allowed (spec.md §4.3.2).
func (t *Tree[T]) InsertByRank(pos int, v T) (Handle, error) {
	const op = "InsertByRank"
	if err := t.checkPoison(op); err != nil {
		return Nil, err
	}
	if pos < 0 || pos > t.length {
		return Nil, newError(op, OutOfRange, "pos=%d len=%d", pos, t.length)
	}

	h, err := t.allocNode(op, node[T]{size: 1, colour: red, value: v})
	if err != nil {
		return Nil, err
	}

	if t.root == Nil {
		t.setColour(h, black)
		t.root = h
		t.bumpVersion()
		t.length++
		return h, nil
	}

	x := t.root
	var y Handle
	left := false
	for x != Nil {
		t.at(x).size++
		y = x
		l := t.at(x).left
		c := pos - int(t.at(l).size)
		if c <= 0 {
			left = true
			x = l
		} else {
			left = false
			pos = c - 1
			x = t.at(x).right
		}
	}

	t.at(h).parent = y
	if left {
		t.setLeft(y, h)
	} else {
		t.setRight(y, h)
	}
	if t.linkMode == Successor {
		if left {
			t.linkInsertLeft(h, y)
		} else {
			t.linkInsertRight(h, y)
		}
	}
	t.insertFixup(&t.root, h)
	t.bumpVersion()
	t.length++
	debug.Log(nil, op, "%v attached under %v", h, y)
	return h, nil
}

// Append inserts v at the end of the tree's order: InsertByRank(Len, v).
// It panics on ResourceExhausted (pos == t.length is otherwise always in
// range) rather than returning an error, matching the teacher's arena
// convention that allocation failure is fatal, not recoverable.
func (t *Tree[T]) Append(v T) Handle {
	h, err := t.InsertByRank(t.length, v)
	if err != nil {
		panic(err)
	}
	return h
}
