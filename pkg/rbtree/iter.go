package rbtree

// Iterator is a fail-fast, forward-only in-order iterator over a Tree.
// It stamps the tree's version at creation and every subsequent call to
// Next rechecks it: any intervening mutation returns ConcurrentMutation
// (spec.md §4.4).
//
// An Iterator does not hold a lock; it is only safe to use while no
// other goroutine mutates the tree.
type Iterator[T any] struct {
	t       *Tree[T]
	version uint32

	// next is used in Successor mode: the chain link field already
	// gives O(1)-per-step forward order (spec.md §3, §4.4), so there is
	// no reason to re-derive it via structural descent.
	next Handle

	// stack is used in Satellite mode, where traversal must special-case
	// duplicate-group anchors and descend into their satellite subtree.
	stack []Handle

	remaining int // -1 means unbounded
}

// Iter returns an iterator that yields values in rank order (ascending
// key order for a key-ordered tree), starting at 0-indexed rank
// fromRank.
func (t *Tree[T]) Iter(fromRank int) (*Iterator[T], error) {
	const op = "Iter"
	if err := t.checkPoison(op); err != nil {
		return nil, err
	}
	if fromRank < 0 || fromRank > t.length {
		return nil, newError(op, OutOfRange, "fromRank=%d len=%d", fromRank, t.length)
	}

	it := &Iterator[T]{t: t, version: t.version, remaining: -1}
	if t.linkMode == Successor {
		it.next = t.handleAtRankFrom(t.root, fromRank) // Nil when fromRank == length
	} else {
		it.stack = t.seek(t.root, fromRank)
	}
	return it, nil
}

// RangeByIndex returns an iterator over exactly count values starting
// at 0-indexed rank start (fewer if the tree is shorter than
// start+count).
func (t *Tree[T]) RangeByIndex(start, count int) (*Iterator[T], error) {
	const op = "RangeByIndex"
	if count < 0 {
		return nil, newError(op, OutOfRange, "count=%d", count)
	}
	it, err := t.Iter(start)
	if err != nil {
		return nil, err
	}
	it.remaining = count
	return it, nil
}

// Next advances the iterator, returning the next handle and value in
// order. ok is false once the iterator is exhausted; err is non-nil,
// with ok false, if the tree was mutated since the iterator (or its
// underlying Tree) was last positioned.
func (it *Iterator[T]) Next() (h Handle, v T, ok bool, err error) {
	if it.version != it.t.version {
		return Nil, v, false, newError("Iterator.Next", ConcurrentMutation,
			"tree mutated from version %d to %d", it.version, it.t.version)
	}
	if it.remaining == 0 {
		return Nil, v, false, nil
	}

	if it.t.linkMode == Successor {
		x := it.next
		if x == Nil {
			return Nil, v, false, nil
		}
		it.next = it.t.at(x).link
		if it.remaining > 0 {
			it.remaining--
		}
		return x, it.t.at(x).value, true, nil
	}

	for len(it.stack) > 0 {
		n := len(it.stack) - 1
		x := it.stack[n]
		it.stack = it.stack[:n]

		if it.t.at(x).link != Nil {
			// x is a duplicate-group anchor: it is never yielded itself.
			// Defer its right subtree, then descend into its satellite.
			if r := it.t.at(x).right; r != Nil {
				it.pushLeftSpine(r)
			}
			it.pushLeftSpine(it.t.at(x).link)
			continue
		}

		if r := it.t.at(x).right; r != Nil {
			it.pushLeftSpine(r)
		}
		if it.remaining > 0 {
			it.remaining--
		}
		return x, it.t.at(x).value, true, nil
	}
	return Nil, v, false, nil
}

func (it *Iterator[T]) pushLeftSpine(h Handle) {
	it.stack = append(it.stack, it.t.leftSpine(h)...)
}

// leftSpine returns h, h.left, h.left.left, ... down to the leftmost
// descendant, in that (root-first) order — the frames pushLeftSpine
// pushes, factored out so seek can build the same shape without an
// Iterator to push onto.
func (t *Tree[T]) leftSpine(h Handle) []Handle {
	var frames []Handle
	for h != Nil {
		frames = append(frames, h)
		h = t.at(h).left
	}
	return frames
}

// seek builds the stack an Iterator needs to resume at 0-indexed rank
// (relative to root), descending into a satellite subtree when rank
// falls inside a duplicate group's contribution. Frames are pushed
// bottom-to-top in pop order, mirroring pushLeftSpine, so Next's
// generic pop loop resumes correctly regardless of whether a frame
// arrived via seek or via a later pushLeftSpine.
//
// When rank lands inside a duplicate group, the group's anchor frame
// is deliberately never pushed: Next's anchor case always restarts a
// satellite subtree from its own beginning, which is correct the first
// time a structural descent reaches an anchor but wrong when resuming
// mid-group — it would replay the whole group instead of continuing
// from rank. The anchor's right subtree is deferred below the
// satellite continuation so it still surfaces after the group ends.
func (t *Tree[T]) seek(root Handle, rank int) []Handle {
	var stack []Handle
	x := root
	for x != Nil {
		l := t.at(x).left
		lsize := int(t.at(l).size)
		if rank < lsize {
			stack = append(stack, x)
			x = l
			continue
		}
		rank -= lsize

		contrib := t.selfContribution(x)
		if rank < contrib {
			if contrib > 1 {
				if r := t.at(x).right; r != Nil {
					stack = append(stack, t.leftSpine(r)...)
				}
				stack = append(stack, t.seek(t.at(x).link, rank)...)
				return stack
			}
			stack = append(stack, x)
			return stack
		}
		rank -= contrib
		x = t.at(x).right
	}
	return stack
}
