package entities

import (
	"encoding/json"
	"sort"
)

// Set is a set of catalog ids. It serializes as a sorted JSON array so two
// equal sets always produce the same bytes.
type Set[T ~string] map[T]struct{}

// NewSet builds a set from ids
func NewSet[T ~string](ids ...T) Set[T] {
	s := make(Set[T], len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports membership; a nil set is empty
func (s Set[T]) Has(id T) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id, allocating the set when nil
func (s *Set[T]) Add(id T) {
	if *s == nil {
		*s = make(Set[T])
	}
	(*s)[id] = struct{}{}
}

// Remove deletes id
func (s Set[T]) Remove(id T) {
	delete(s, id)
}

// Sorted returns the members in ascending order
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone copies the set; cloning nil yields an empty set
func (s Set[T]) Clone() Set[T] {
	out := make(Set[T], len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON writes the set as a sorted array
func (s Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON reads an array of ids
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var ids []T
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
