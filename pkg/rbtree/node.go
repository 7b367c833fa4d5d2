package rbtree

import "github.com/flier/ostree/pkg/slab"

type colour int8

const (
	black colour = iota
	red
)

func (c colour) String() string {
	if c == red {
		return "red"
	}
	return "black"
}

// node is the slab's payload type. The sentinel slot (handle zero of
// every Slab) is a permanently zero node, which is why left, right,
// parent and link all read as slab.NIL, size reads as 0, and colour
// reads as black at the sentinel — the base cases of every traversal.
type node[T any] struct {
	left, right, parent, link slab.Handle
	size                      uint32
	colour                    colour
	value                     T
}
