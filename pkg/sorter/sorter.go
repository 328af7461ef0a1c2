// Package sorter orders array indices by an integer weight.
//
// The layouter uses a [Sorter] to decide in which order relationships are
// routed: each relationship index is inserted with its simpleness weight and
// read back in ascending weight order.
//
//	s := sorter.New(sorter.DefaultCapacity)
//	_ = s.Insert(0, 40)
//	_ = s.Insert(1, -10)
//	s.ArrayIndex(0) // 1
//
// A Sorter is not safe for concurrent use. Each layout pass owns its own.
package sorter

import (
	apperrors "github.com/matzehuels/facetlayout/pkg/errors"
)

// DefaultCapacity matches the maximum number of relationships in a visible set.
const DefaultCapacity = 1024

type entry struct {
	index  int
	weight int64
}

// Sorter is a fixed-capacity list of (array index, weight) pairs kept in
// ascending weight order. Entries with equal weight stay in insertion order.
type Sorter struct {
	entries []entry
}

// New creates an empty sorter holding at most capacity entries.
// A capacity below one falls back to [DefaultCapacity].
func New(capacity int) *Sorter {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Sorter{entries: make([]entry, 0, capacity)}
}

// Insert adds arrayIndex with the given weight.
//
// When the sorter is full the pair is dropped, the list is left unchanged and
// a capacity-exceeded error is returned. Callers treat this as a warning.
func (s *Sorter) Insert(arrayIndex int, weight int64) error {
	if len(s.entries) == cap(s.entries) {
		return apperrors.New(apperrors.ErrCodeCapacityExceeded,
			"sorter full: capacity %d, index %d dropped", cap(s.entries), arrayIndex)
	}

	// Walk back from the end past every heavier entry; equal weights stay
	// in front so ties keep insertion order.
	pos := len(s.entries)
	s.entries = append(s.entries, entry{})
	for pos > 0 && s.entries[pos-1].weight > weight {
		s.entries[pos] = s.entries[pos-1]
		pos--
	}
	s.entries[pos] = entry{index: arrayIndex, weight: weight}
	return nil
}

// Len returns the number of entries.
func (s *Sorter) Len() int { return len(s.entries) }

// Cap returns the fixed capacity.
func (s *Sorter) Cap() int { return cap(s.entries) }

// ArrayIndex returns the array index stored at sortIndex, or -1 when
// sortIndex is out of range.
func (s *Sorter) ArrayIndex(sortIndex int) int {
	if sortIndex < 0 || sortIndex >= len(s.entries) {
		return -1
	}
	return s.entries[sortIndex].index
}

// Weight returns the weight stored at sortIndex, or 0 when out of range.
func (s *Sorter) Weight(sortIndex int) int64 {
	if sortIndex < 0 || sortIndex >= len(s.entries) {
		return 0
	}
	return s.entries[sortIndex].weight
}

// Reset empties the sorter while keeping its capacity.
func (s *Sorter) Reset() { s.entries = s.entries[:0] }
