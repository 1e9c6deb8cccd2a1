package headers

import (
	"net/http"
	"slices"
	"strings"
)

const (
	MaxOWSBytes      = 1  // leading/trailing OWS bytes tolerated per element
	MaxEmptyElements = 16 // empty list elements tolerated per list
)

// A SortedSet is a set of byte-lowercase header names in which each element
// has a position reflecting lexicographical order.
// The zero value represents an empty set.
type SortedSet struct {
	pos    map[string]int
	maxLen int
}

// NewSortedSet returns a SortedSet containing elems and no other elements.
func NewSortedSet(elems ...string) SortedSet {
	elems = slices.Clone(elems)
	slices.Sort(elems)
	elems = slices.Compact(elems)
	set := SortedSet{pos: make(map[string]int, len(elems))}
	for i, e := range elems {
		set.pos[e] = i
		set.maxLen = max(set.maxLen, len(e))
	}
	return set
}

// Size returns the cardinality of set.
func (set SortedSet) Size() int {
	return len(set.pos)
}

// Contains reports whether name is an element of set.
func (set SortedSet) Contains(name string) bool {
	_, found := set.pos[name]
	return found
}

// String returns the elements of set in order, separated by commas.
func (set SortedSet) String() string {
	elems := make([]string, len(set.pos))
	for e, i := range set.pos {
		elems[i] = e
	}
	return strings.Join(elems, ValueSep)
}

// Canonical returns the elements of set in [http.CanonicalHeaderKey] form,
// sorted.
func (set SortedSet) Canonical() []string {
	res := make([]string, 0, len(set.pos))
	for e := range set.pos {
		res = append(res, http.CanonicalHeaderKey(e))
	}
	slices.Sort(res)
	return res
}

// Accepts reports whether values, the field lines of a list-based header
// such as Access-Control-Request-Headers, only list elements of set,
// in increasing order and without duplicates.
//
// Browsers send ACRH as a single, sorted, lowercase, whitespace-free line,
// but intermediaries may split it across lines or pad its elements;
// Accepts tolerates up to [MaxOWSBytes] of whitespace around each element
// and up to [MaxEmptyElements] empty elements, and no more, so that an
// adversarial value cannot make it scan arbitrarily long names.
func (set SortedSet) Accepts(values []string) bool {
	maxLen := MaxOWSBytes + set.maxLen + MaxOWSBytes + 1 // +1 for comma
	var (
		last    = -1
		empties int
	)
	for _, s := range values {
		for {
			var (
				name  string
				comma bool
			)
			name, s, comma = cutAtComma(s, maxLen)
			name, ok := TrimOWS(name, MaxOWSBytes)
			if !ok {
				return false
			}
			if name == "" {
				empties++
				if empties > MaxEmptyElements {
					return false
				}
			} else {
				i, found := set.pos[name]
				if !found || i <= last {
					return false
				}
				last = i
			}
			if !comma {
				break
			}
		}
	}
	return true
}

// Disallowed returns, in order of appearance and without duplicates,
// the non-empty elements of values that are not members of set.
// At most limit elements are returned. Unlike [SortedSet.Accepts],
// Disallowed is lenient about whitespace and order; it exists to
// produce helpful error messages.
func (set SortedSet) Disallowed(values []string, limit int) []string {
	var res []string
	for _, s := range values {
		for name := range strings.SplitSeq(s, ValueSep) {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" || set.Contains(name) || slices.Contains(res, name) {
				continue
			}
			res = append(res, name)
			if len(res) >= limit {
				return res
			}
		}
	}
	return res
}

// cutAtComma slices s around the first comma among the first n bytes of s.
// If no comma appears there, it returns s, "", false.
func cutAtComma(s string, n int) (before, after string, found bool) {
	end := min(len(s), n)
	if i := strings.IndexByte(s[:end], ','); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// TrimOWS trims up to n bytes of [optional whitespace] from each end of s.
// If more than n bytes of whitespace are found at either end,
// it returns s unchanged and false.
//
// [optional whitespace]: https://httpwg.org/specs/rfc9110.html#whitespace
func TrimOWS(s string, n int) (string, bool) {
	start, end := 0, len(s)
	for start < end && isOWS(s[start]) {
		start++
	}
	if start > n {
		return s, false
	}
	for end > start && isOWS(s[end-1]) {
		end--
	}
	if len(s)-end > n {
		return s, false
	}
	return s[start:end], true
}

func isOWS(b byte) bool {
	return b == ' ' || b == '\t'
}
