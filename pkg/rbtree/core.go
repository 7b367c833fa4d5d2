package rbtree

import "github.com/flier/ostree/internal/debug"

// rotateLeft is the standard CLRS left rotation around pivot x, rooted
// at *root (so it works identically for the main tree and for a
// satellite subtree, whose "root" is its anchor's link field).
func (t *Tree[T]) rotateLeft(root *Handle, x Handle) {
	y := t.at(x).right
	t.setRight(x, t.at(y).left)
	if t.at(y).left != Nil {
		t.setParent(t.at(y).left, x)
	}
	t.setParent(y, t.at(x).parent)

	p := t.at(x).parent
	switch {
	case p == Nil:
		*root = y
	case t.at(p).left == x:
		t.setLeft(p, y)
	default:
		t.setRight(p, y)
	}
	t.setLeft(y, x)
	t.setParent(x, y)

	t.recomputeSize(x)
	t.recomputeSize(y)
	debug.Log(nil, "rotate-left", "pivot=%v new-root=%v", x, y)
}

// rotateRight is the mirror image of rotateLeft.
func (t *Tree[T]) rotateRight(root *Handle, x Handle) {
	y := t.at(x).left
	t.setLeft(x, t.at(y).right)
	if t.at(y).right != Nil {
		t.setParent(t.at(y).right, x)
	}
	t.setParent(y, t.at(x).parent)

	p := t.at(x).parent
	switch {
	case p == Nil:
		*root = y
	case t.at(p).right == x:
		t.setRight(p, y)
	default:
		t.setLeft(p, y)
	}
	t.setRight(y, x)
	t.setParent(x, y)

	t.recomputeSize(x)
	t.recomputeSize(y)
	debug.Log(nil, "rotate-right", "pivot=%v new-root=%v", x, y)
}

// insertFixup is the canonical CLRS red-black insert fixup, generalized
// over an explicit root pointer so it works for satellite subtrees too.
func (t *Tree[T]) insertFixup(root *Handle, z Handle) {
	for t.colourOf(t.at(z).parent) == red {
		p := t.at(z).parent
		gp := t.at(p).parent
		if gp == Nil {
			debug.Assert(false, "insertFixup: red node %v has no grandparent", p)
			break
		}
		if p == t.at(gp).left {
			u := t.at(gp).right
			if t.colourOf(u) == red {
				t.setColour(p, black)
				t.setColour(u, black)
				t.setColour(gp, red)
				z = gp
				continue
			}
			if z == t.at(p).right {
				z = p
				t.rotateLeft(root, z)
				p = t.at(z).parent
				gp = t.at(p).parent
			}
			t.setColour(p, black)
			t.setColour(gp, red)
			t.rotateRight(root, gp)
		} else {
			u := t.at(gp).left
			if t.colourOf(u) == red {
				t.setColour(p, black)
				t.setColour(u, black)
				t.setColour(gp, red)
				z = gp
				continue
			}
			if z == t.at(p).left {
				z = p
				t.rotateRight(root, z)
				p = t.at(z).parent
				gp = t.at(p).parent
			}
			t.setColour(p, black)
			t.setColour(gp, red)
			t.rotateLeft(root, gp)
		}
	}
	t.setColour(*root, black)
}

// transplant replaces the subtree rooted at u with the subtree rooted
// at v, within the subtree rooted at *root.
func (t *Tree[T]) transplant(root *Handle, u, v Handle) {
	p := t.at(u).parent
	switch {
	case p == Nil:
		*root = v
	case u == t.at(p).left:
		t.setLeft(p, v)
	default:
		t.setRight(p, v)
	}
	// CLRS writes v.p = u.p even when v is the sentinel, so that
	// deleteFixup's caller-supplied replacement parent is correct; our
	// setParent is already a safe no-op when v == Nil, and the caller
	// of deleteFixup passes the spliced parent explicitly regardless.
	t.setParent(v, p)
}

// deleteFixup is the canonical CLRS red-black delete fixup. x may be
// Nil (the sentinel); xParent is passed explicitly since in that case
// x itself carries no parent link to recover it from.
func (t *Tree[T]) deleteFixup(root *Handle, x, xParent Handle) {
	for x != *root && t.colourOf(x) == black {
		if xParent == Nil {
			debug.Assert(false, "deleteFixup: lost track of x's parent")
			break
		}
		if x == t.at(xParent).left {
			w := t.at(xParent).right
			if t.colourOf(w) == red {
				t.setColour(w, black)
				t.setColour(xParent, red)
				t.rotateLeft(root, xParent)
				w = t.at(xParent).right
			}
			if t.colourOf(t.at(w).left) == black && t.colourOf(t.at(w).right) == black {
				t.setColour(w, red)
				x = xParent
				xParent = t.at(x).parent
				continue
			}
			if t.colourOf(t.at(w).right) == black {
				t.setColour(t.at(w).left, black)
				t.setColour(w, red)
				t.rotateRight(root, w)
				w = t.at(xParent).right
			}
			t.setColour(w, t.colourOf(xParent))
			t.setColour(xParent, black)
			t.setColour(t.at(w).right, black)
			t.rotateLeft(root, xParent)
			x = *root
			xParent = Nil
		} else {
			w := t.at(xParent).left
			if t.colourOf(w) == red {
				t.setColour(w, black)
				t.setColour(xParent, red)
				t.rotateRight(root, xParent)
				w = t.at(xParent).left
			}
			if t.colourOf(t.at(w).right) == black && t.colourOf(t.at(w).left) == black {
				t.setColour(w, red)
				x = xParent
				xParent = t.at(x).parent
				continue
			}
			if t.colourOf(t.at(w).left) == black {
				t.setColour(t.at(w).right, black)
				t.setColour(w, red)
				t.rotateLeft(root, w)
				w = t.at(xParent).left
			}
			t.setColour(w, t.colourOf(xParent))
			t.setColour(xParent, black)
			t.setColour(t.at(w).left, black)
			t.rotateRight(root, xParent)
			x = *root
			xParent = Nil
		}
	}
	t.setColour(x, black)
}

func (t *Tree[T]) subtreeMin(x Handle) Handle {
	if x == Nil {
		return Nil
	}
	for t.at(x).left != Nil {
		x = t.at(x).left
	}
	return x
}

func (t *Tree[T]) subtreeMax(x Handle) Handle {
	if x == Nil {
		return Nil
	}
	for t.at(x).right != Nil {
		x = t.at(x).right
	}
	return x
}

// structuralSuccessor finds x's in-order successor by walking links,
// independent of the successor-chain link field. Used by
// linkInsertRight to find the successor a newly attached right child
// takes over.
func (t *Tree[T]) structuralSuccessor(x Handle) Handle {
	if t.at(x).right != Nil {
		return t.subtreeMin(t.at(x).right)
	}
	y := t.at(x).parent
	for y != Nil && x == t.at(y).right {
		x = y
		y = t.at(y).parent
	}
	return y
}

func (t *Tree[T]) structuralPredecessor(x Handle) Handle {
	if t.at(x).left != Nil {
		return t.subtreeMax(t.at(x).left)
	}
	y := t.at(x).parent
	for y != Nil && x == t.at(y).left {
		x = y
		y = t.at(y).parent
	}
	return y
}

// handleAtRankFrom descends root using size(left)+1 as the local rank,
// returning the rank'th (0-indexed) value-bearing handle in the subtree
// rooted at root, descending into a satellite subtree when the target
// rank falls inside a duplicate group's contribution.
func (t *Tree[T]) handleAtRankFrom(root Handle, rank int) Handle {
	x := root
	for x != Nil {
		l := t.at(x).left
		lsize := int(t.at(l).size)
		if rank < lsize {
			x = l
			continue
		}
		rank -= lsize
		contrib := t.selfContribution(x)
		if rank < contrib {
			if contrib == 1 {
				return x
			}
			return t.handleAtRankFrom(t.at(x).link, rank)
		}
		rank -= contrib
		x = t.at(x).right
	}
	return Nil
}

// rankOfHandle returns h's absolute 0-indexed rank in the effective
// in-order traversal, accounting for duplicate groups (spec.md §4.2).
func (t *Tree[T]) rankOfHandle(h Handle) int {
	rank := int(t.at(t.at(h).left).size)
	x := h
	for t.at(x).parent != Nil {
		p := t.at(x).parent
		if x == t.at(p).right {
			rank += int(t.at(t.at(p).left).size) + t.selfContribution(p)
		}
		x = p
	}
	if x != t.root {
		if anchor, ok := t.satelliteAnchor[x]; ok {
			rank += t.rankOfHandle(anchor)
		}
	}
	return rank
}
