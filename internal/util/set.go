package util

import (
	"maps"
	"slices"
)

// A Set represents a set of strings.
// The zero value represents an empty set; it is ready to use.
type Set struct {
	m map[string]struct{}
}

// NewSet returns a Set that contains all of elems
// but no other elements.
func NewSet(elems ...string) Set {
	var set Set
	for _, e := range elems {
		set.Add(e)
	}
	return set
}

// Add adds e to set.
func (set *Set) Add(e string) {
	if set.m == nil {
		set.m = make(map[string]struct{})
	}
	set.m[e] = struct{}{}
}

// Contains reports whether e is an element of set.
func (set Set) Contains(e string) bool {
	_, found := set.m[e]
	return found
}

// Size returns the cardinality of set.
func (set Set) Size() int {
	return len(set.m)
}

// Sorted returns the elements of set sorted in lexicographical order.
func (set Set) Sorted() []string {
	return slices.Sorted(maps.Keys(set.m))
}
