package rbtree

import (
	"fmt"

	"github.com/dolthub/maphash"
)

// Comparator is a total order on values of type T: negative if a sorts
// before b, zero if they are equal under this order, positive otherwise.
type Comparator[T any] func(a, b T) int

// hashSatelliteComparator builds the default satellite comparator
// described in spec.md §3.3: a stable, seeded hash order over an
// arbitrary value, acceptable for most uses but formally fallible on
// hash collisions (see spec.md §9). It reuses the same hashing
// dependency the teacher's pkg/arena/swiss map used for its group
// probes, here seeding a hasher over the value's string projection
// since T is not required to be comparable.
func hashSatelliteComparator[T any]() Comparator[T] {
	hasher := maphash.NewHasher[string]()

	return func(a, b T) int {
		ha := hasher.Hash(fmt.Sprint(a))
		hb := hasher.Hash(fmt.Sprint(b))
		switch {
		case ha < hb:
			return -1
		case ha > hb:
			return 1
		default:
			return 0
		}
	}
}
