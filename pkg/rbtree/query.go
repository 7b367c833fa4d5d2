package rbtree

// FindByKey returns the handle of a value equal to v under the primary
// comparator, or Nil if none exists. When duplicates exist for that
// key, the handle returned is the satellite group's current minimum by
// satellite order (spec.md §4.3.5, §9: this is the "first wins"
// resolution used whenever a caller needs exactly one handle for a key
// that has more than one value, including the rare case where the
// default hash-based satellite comparator collides two otherwise
// distinct values onto the same ordinal — InsertByKey already refuses
// to insert such a pair, so no group can contain two colliding values,
// but a caller-supplied comparator with genuine ties would see "first
// inserted that still compares least" here).
func (t *Tree[T]) FindByKey(v T) (Handle, error) {
	const op = "FindByKey"
	if err := t.checkPoison(op); err != nil {
		return Nil, err
	}
	h, err := t.findByKey(v)
	if err != nil {
		return Nil, t.poison(err)
	}
	return h, nil
}

// Contains reports whether a value equal to v under the primary
// comparator exists.
func (t *Tree[T]) Contains(v T) (bool, error) {
	h, err := t.FindByKey(v)
	if err != nil {
		return false, err
	}
	return h != Nil, nil
}

func (t *Tree[T]) findByKey(v T) (Handle, error) {
	x := t.root
	for x != Nil {
		c := t.primary(v, t.at(x).value)
		switch {
		case c < 0:
			x = t.at(x).left
		case c > 0:
			x = t.at(x).right
		default:
			if t.linkMode == Satellite {
				if link := t.at(x).link; link != Nil {
					return t.subtreeMin(link), nil
				}
			}
			return x, nil
		}
	}
	return Nil, nil
}

// ValueAtRank returns the value at 0-indexed rank k.
func (t *Tree[T]) ValueAtRank(k int) (v T, err error) {
	const op = "ValueAtRank"
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
	return t.at(h).value, nil
}

// RankOf returns h's 0-indexed rank in the tree's effective order.
func (t *Tree[T]) RankOf(h Handle) (int, error) {
	const op = "RankOf"
	if err := t.checkPoison(op); err != nil {
		return 0, err
	}
	if !t.slab.Valid(h) || h == Nil {
		return 0, newError(op, NotFound, "handle %v is not live", h)
	}
	return t.rankOfHandle(h), nil
}

// ValueOf returns the value currently stored at h.
func (t *Tree[T]) ValueOf(h Handle) (v T, err error) {
	const op = "ValueOf"
	if err := t.checkPoison(op); err != nil {
		return v, err
	}
	if !t.slab.Valid(h) || h == Nil {
		return v, newError(op, NotFound, "handle %v is not live", h)
	}
	return t.at(h).value, nil
}

// UpdateValue overwrites the value held at h. If h is a satellite
// group's current root, the mirrored copy held at the main-tree anchor
// is updated too, so FindByKey and ordered iteration over the main
// tree observe the change immediately (spec.md §4.3.5).
//
// UpdateValue does not re-sort h: callers must not change a field the
// primary or satellite comparator depends on.
func (t *Tree[T]) UpdateValue(h Handle, v T) error {
	const op = "UpdateValue"
	if err := t.checkPoison(op); err != nil {
		return err
	}
	if !t.slab.Valid(h) || h == Nil {
		return newError(op, NotFound, "handle %v is not live", h)
	}
	t.at(h).value = v
	if t.isSatelliteRoot(h) {
		if anchor, ok := t.satelliteAnchor[h]; ok {
			t.at(anchor).value = v
		}
	}
	return nil
}
