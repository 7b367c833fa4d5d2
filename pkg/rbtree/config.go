package rbtree

import "github.com/flier/ostree/pkg/opt"

// LinkMode selects, once at construction and immutably thereafter, what
// the node field link means for the whole tree (spec.md §3/§9).
type LinkMode int

const (
	// Successor trees thread link as the in-order successor of each
	// node, enabling O(1)-per-step forward iteration. Values may be
	// inserted by key or by rank position. InsertByRank places equal
	// values at distinct positions as ordinary nodes; New rejects
	// AllowDuplicates for this mode, so InsertByKey never forms
	// satellite groups here.
	Successor LinkMode = iota

	// Satellite trees use link as the root of a nested satellite
	// subtree for logical duplicates under a primary comparator.
	// Insertion is by key; AllowDuplicates controls whether a second
	// key-equal value promotes to a satellite group or is rejected.
	Satellite
)

func (m LinkMode) String() string {
	if m == Successor {
		return "Successor"
	}
	return "Satellite"
}

// Config describes how a [Tree] orders and structures its values.
// AllowDuplicates may be tightened from true to false only while the
// tree holds no duplicates; the reverse transition is always allowed.
// Primary is required. Satellite defaults to a stable-hash order when
// left as [opt.None].
type Config[T any] struct {
	LinkMode        LinkMode
	AllowDuplicates bool
	Primary         Comparator[T]
	Satellite       opt.Option[Comparator[T]]
}
