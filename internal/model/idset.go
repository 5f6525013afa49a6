package model

import "sort"

// IDSet is a set of numeric ids.
type IDSet map[int64]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set holds nothing.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy. Cloning nil yields nil.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy of the set with ids added.
func (s IDSet) With(ids ...int64) IDSet {
	out := s.Clone()
	if out == nil {
		out = make(IDSet, len(ids))
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// Without returns a copy of the set with ids removed.
func (s IDSet) Without(ids ...int64) IDSet {
	out := s.Clone()
	for _, id := range ids {
		delete(out, id)
	}
	return out
}
