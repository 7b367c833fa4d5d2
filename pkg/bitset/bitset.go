// Package bitset provides a word-packed, growable bitmap with
// trailing-zero-count scans for finding the first unset bit.
//
// It is the shared scanning primitive behind [github.com/flier/ostree/pkg/slab]'s
// per-page live bitmap and page-table full bitmap: both need "find a zero
// bit starting near this hint, wrapping once" and neither needs anything
// a general-purpose bitset library would add on top.
package bitset

import "math/bits"

const wordBits = 64

// Set is a growable bitmap over uint64 words.
//
// The zero Set is empty and ready to use.
type Set struct {
	words []uint64
	n     int // number of bits currently addressable
}

// New returns a Set with room for at least n bits, all initially clear.
func New(n int) *Set {
	s := &Set{}
	s.Grow(n)
	return s
}

// Len returns the number of addressable bits.
func (s *Set) Len() int { return s.n }

// Grow ensures the set can address at least n bits, without disturbing
// the value of any existing bit.
func (s *Set) Grow(n int) {
	if n <= s.n {
		return
	}
	need := (n + wordBits - 1) / wordBits
	if need > len(s.words) {
		grown := make([]uint64, need)
		copy(grown, s.words)
		s.words = grown
	}
	s.n = n
}

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	w, b := i/wordBits, uint(i%wordBits)
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(uint64(1)<<b) != 0
}

// Set marks bit i as set, growing the set if necessary.
func (s *Set) Set(i int) {
	s.Grow(i + 1)
	w, b := i/wordBits, uint(i%wordBits)
	s.words[w] |= uint64(1) << b
}

// Clear marks bit i as unset.
func (s *Set) Clear(i int) {
	w, b := i/wordBits, uint(i%wordBits)
	if w >= len(s.words) {
		return
	}
	s.words[w] &^= uint64(1) << b
}

// FirstZero finds the lowest-indexed clear bit at or after hint, within
// [0, n). If none is found between hint and n, the scan wraps once to
// the start and searches [0, hint). Returns (-1, false) if every bit in
// [0, n) is set.
func (s *Set) FirstZero(n, hint int) (int, bool) {
	if n <= 0 {
		return -1, false
	}
	if hint < 0 || hint >= n {
		hint = 0
	}
	if i, ok := s.firstZeroIn(hint, n); ok {
		return i, true
	}
	if hint == 0 {
		return -1, false
	}
	return s.firstZeroIn(0, hint)
}

func (s *Set) firstZeroIn(from, to int) (int, bool) {
	if from >= to {
		return -1, false
	}
	wFrom, wTo := from/wordBits, (to-1)/wordBits
	for w := wFrom; w <= wTo; w++ {
		word := uint64(0)
		if w < len(s.words) {
			word = s.words[w]
		}
		// Mask off bits outside [from, to) within this word.
		lo, hi := w*wordBits, w*wordBits+wordBits
		if lo < from {
			word |= (uint64(1) << uint(from-lo)) - 1
		}
		if hi > to {
			shift := uint(hi - to)
			word |= ^uint64(0) << (wordBits - shift)
		}
		if word == ^uint64(0) {
			continue
		}
		bit := bits.TrailingZeros64(^word)
		idx := w*wordBits + bit
		if idx >= from && idx < to {
			return idx, true
		}
	}
	return -1, false
}

// PopCount returns the number of set bits in [0, n).
func (s *Set) PopCount(n int) (count int) {
	for w := 0; w*wordBits < n; w++ {
		word := uint64(0)
		if w < len(s.words) {
			word = s.words[w]
		}
		hi := w*wordBits + wordBits
		if hi > n {
			shift := uint(hi - n)
			word &^= ^uint64(0) << (wordBits - shift)
		}
		count += bits.OnesCount64(word)
	}
	return
}
