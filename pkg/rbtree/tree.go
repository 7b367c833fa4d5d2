// Package rbtree implements an order-statistic red-black tree engine:
// O(log n) ordered lookup by key, O(log n) indexed lookup by rank, and
// O(log n) positional insert/remove, with optional support for logical
// duplicates via a nested satellite subtree.
//
// The engine is exclusively owned during mutation: it is not re-entrant
// and not safe for concurrent use from multiple goroutines without
// external synchronization (spec.md §5). It never blocks, never takes a
// context.Context, and every operation completes in bounded time.
package rbtree

import (
	"github.com/flier/ostree/pkg/slab"
)

// Handle is an integer identifying a node. A handle returned by an
// Insert* method continues to address that value across rotations and
// satellite collapses. The one exception is a two-child delete (see
// [Tree.Remove]): the removed handle stays live and takes over its
// structural successor's value, and the successor's own handle is
// freed.
type Handle = slab.Handle

// Nil is the sentinel handle denoting "no node".
const Nil = slab.NIL

// Tree is an order-statistic red-black tree over values of type T.
//
// A zero Tree is not ready to use; construct one with [New].
type Tree[T any] struct {
	slab *slab.Slab[node[T]]
	root Handle

	linkMode  LinkMode
	allowDup  bool
	primary   Comparator[T]
	satellite Comparator[T]

	length   int
	version  uint32
	poisoned *Error

	// satelliteAnchor maps a duplicate group's current satellite
	// subtree root to its main-tree anchor (placeholder). A satellite
	// root's own parent field is always NIL (spec.md §3 rule 3), so the
	// anchor cannot be recovered by walking parent; this index is
	// updated every time a rotation or collapse changes which node is a
	// group's root. See DESIGN.md for the Open Question this resolves.
	satelliteAnchor map[Handle]Handle
}

// New constructs a Tree. Primary is required; panics if nil.
func New[T any](cfg Config[T]) *Tree[T] {
	if cfg.Primary == nil {
		panic("rbtree: Config.Primary is required")
	}
	if cfg.AllowDuplicates && cfg.LinkMode != Satellite {
		panic("rbtree: AllowDuplicates requires LinkMode == Satellite")
	}

	t := &Tree[T]{
		slab:      slab.New[node[T]](),
		root:      Nil,
		linkMode:  cfg.LinkMode,
		allowDup:  cfg.AllowDuplicates,
		primary:   cfg.Primary,
		satellite: cfg.Satellite.UnwrapOrElse(hashSatelliteComparator[T]),
	}
	if t.linkMode == Satellite {
		t.satelliteAnchor = make(map[Handle]Handle)
	}
	return t
}

// Len returns the number of values held by the tree.
func (t *Tree[T]) Len() int { return t.length }

// Version returns the tree's fail-fast mutation counter. It strictly
// increases on every mutation.
func (t *Tree[T]) Version() uint32 { return t.version }

// Cap returns the total slot capacity currently backed by the slab.
func (t *Tree[T]) Cap() int { return t.slab.Cap() }

// AllowDuplicates reports the tree's current duplicates policy.
func (t *Tree[T]) AllowDuplicates() bool { return t.allowDup }

// SetAllowDuplicates tightens or relaxes the duplicates policy.
// Tightening (true -> false) is only permitted while the tree holds no
// duplicate groups; relaxing (false -> true) is always allowed.
func (t *Tree[T]) SetAllowDuplicates(allow bool) error {
	if !allow && t.allowDup && len(t.satelliteAnchor) > 0 {
		return newError("SetAllowDuplicates", InvariantViolated,
			"cannot forbid duplicates while %d duplicate group(s) exist", len(t.satelliteAnchor))
	}
	t.allowDup = allow
	return nil
}

// Stats reports read-only slab bookkeeping useful for callers tuning
// page-size assumptions, the way arena.Arena exposes Cap/Next/End.
type Stats struct {
	Pages    int
	Live     int
	Capacity int

	// MaxPageOccupancy is the live/capacity ratio of the largest page
	// currently backing the tree, or 0 if it holds no pages. A value
	// much below 1 suggests the page-growth schedule is over-sized for
	// this tree's workload.
	MaxPageOccupancy float64
}

// Stats returns a snapshot of the tree's slab bookkeeping.
func (t *Tree[T]) Stats() Stats {
	return Stats{
		Pages:            t.slab.Pages(),
		Live:             t.slab.Len(),
		Capacity:         t.slab.Cap(),
		MaxPageOccupancy: t.slab.MaxPageOccupancy(),
	}
}

func (t *Tree[T]) at(h Handle) *node[T] { return t.slab.Get(h) }

func (t *Tree[T]) bumpVersion() { t.version++ }

// allocNode allocates a fresh node slot holding n, mapping the slab's
// ErrExhausted into a poisoned ResourceExhausted (spec.md §4.1, §7:
// out-of-capacity is fatal, not a graceful degradation).
func (t *Tree[T]) allocNode(op string, n node[T]) (Handle, error) {
	h, err := t.slab.Alloc(n)
	if err != nil {
		return Nil, t.poison(newError(op, ResourceExhausted, "%v", err))
	}
	return h, nil
}

// poison marks the tree tainted after an InvariantViolated or
// ResourceExhausted error and returns it unchanged, so the caller's
// error return and the tree's remembered poison agree. Accepts the
// plain error interface since most call sites receive one from a
// helper that itself returns error; err is always a *Error in
// practice (every fallible engine operation returns one).
func (t *Tree[T]) poison(err error) error {
	if rerr, ok := err.(*Error); ok && rerr.Kind.Taints() {
		t.poisoned = rerr
	}
	return err
}

// checkPoison returns the remembered taint, if any, wrapped for op.
func (t *Tree[T]) checkPoison(op string) error {
	if t.poisoned == nil {
		return nil
	}
	return newError(op, t.poisoned.Kind, "tree is tainted by a prior error: %v", t.poisoned)
}

// selfContribution is the weight a node contributes to an ancestor's
// size: the satellite group's total count if this node is a
// duplicate-group anchor, otherwise 1 (spec.md §3 rule 2, §4.2
// rank_of_handle).
func (t *Tree[T]) selfContribution(h Handle) int {
	if t.linkMode == Satellite {
		if link := t.at(h).link; link != Nil {
			return int(t.at(link).size)
		}
	}
	return 1
}

// recomputeSize restores node h's augmented size from its children and
// its own contribution. Called on the old pivot then the new pivot
// after every rotation (spec.md §4.2).
func (t *Tree[T]) recomputeSize(h Handle) {
	if h == Nil {
		return
	}
	n := t.at(h)
	n.size = t.at(n.left).size + t.at(n.right).size + uint32(t.selfContribution(h))
}

func (t *Tree[T]) setLeft(h, v Handle) {
	if h == Nil {
		return
	}
	t.at(h).left = v
}

func (t *Tree[T]) setRight(h, v Handle) {
	if h == Nil {
		return
	}
	t.at(h).right = v
}

func (t *Tree[T]) setParent(h, v Handle) {
	if h == Nil {
		return
	}
	t.at(h).parent = v
}

func (t *Tree[T]) setColour(h Handle, c colour) {
	if h == Nil {
		return
	}
	t.at(h).colour = c
}

func (t *Tree[T]) colourOf(h Handle) colour { return t.at(h).colour }

// isSatelliteRoot reports whether h is the root of some duplicate
// group's satellite subtree (as opposed to the tree's own root, or an
// ordinary node). Both kinds of root have parent == NIL (spec.md §3
// rule 3), so the primary root is excluded explicitly.
func (t *Tree[T]) isSatelliteRoot(h Handle) bool {
	if h == Nil || h == t.root || t.linkMode != Satellite {
		return false
	}
	return t.at(h).parent == Nil
}

// syncSatelliteAnchor updates the satellite-root-to-anchor index after a
// structural change to a duplicate group may have moved its root from
// oldRoot to the current value of *rootPtr.
func (t *Tree[T]) syncSatelliteAnchor(anchor Handle, rootPtr *Handle, oldRoot Handle) {
	newRoot := *rootPtr
	if newRoot == oldRoot {
		if _, ok := t.satelliteAnchor[newRoot]; !ok && newRoot != Nil {
			t.satelliteAnchor[newRoot] = anchor
		}
		return
	}
	delete(t.satelliteAnchor, oldRoot)
	if newRoot != Nil {
		t.satelliteAnchor[newRoot] = anchor
	}
}
