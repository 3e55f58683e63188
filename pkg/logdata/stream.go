package logdata

import (
	"slices"
	"sort"
)

// Stream keeps dated records sorted by turn number. Records with equal turn
// numbers keep their insertion order.
type Stream[T Dated] struct {
	items     []T
	redundant func(prev, next T) bool
}

// NewStream creates a stream. When redundant is non-nil, a record is dropped
// if redundant reports true against the record that would precede it.
func NewStream[T Dated](redundant func(prev, next T) bool) *Stream[T] {
	return &Stream[T]{redundant: redundant}
}

// Add inserts v and reports whether it was kept.
func (s *Stream[T]) Add(v T) bool {
	i := sort.Search(len(s.items), func(i int) bool {
		return s.items[i].Turn() > v.Turn()
	})
	if s.redundant != nil && i > 0 && s.redundant(s.items[i-1], v) {
		return false
	}
	s.items = slices.Insert(s.items, i, v)
	return true
}

func (s *Stream[T]) Len() int {
	return len(s.items)
}

// Last returns the record with the highest turn number.
func (s *Stream[T]) Last() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[len(s.items)-1], true
}

// Items returns a copy of the records in turn order.
func (s *Stream[T]) Items() []T {
	return slices.Clone(s.items)
}

// Range returns the records with start <= turn <= end.
func (s *Stream[T]) Range(start, end int) []T {
	var out []T
	for _, v := range s.items {
		if v.Turn() >= start && v.Turn() <= end {
			out = append(out, v)
		}
	}
	return out
}
