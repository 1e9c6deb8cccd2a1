package origins

import (
	"slices"
	"strings"
)

// A Set is an immutable set of origin patterns.
// The zero value is an empty set.
type Set struct {
	exact map[Origin]struct{}
	// wildcards holds patterns that cover more than one origin,
	// i.e. subdomain patterns and patterns with an arbitrary port.
	wildcards []Pattern
	raw       []string
}

// NewSet returns a Set containing ps. Redundant patterns are kept;
// they are harmless.
func NewSet(ps ...Pattern) Set {
	set := Set{exact: make(map[Origin]struct{})}
	for _, p := range ps {
		set.raw = append(set.raw, p.String())
		if p.Subdomains || p.Port == -1 {
			set.wildcards = append(set.wildcards, p)
			continue
		}
		set.exact[Origin{Scheme: p.Scheme, Host: p.Host, Port: p.Port}] = struct{}{}
	}
	slices.Sort(set.raw)
	set.raw = slices.Compact(set.raw)
	return set
}

// Contains reports whether o matches one of the patterns in set.
func (set Set) Contains(o Origin) bool {
	if _, found := set.exact[o]; found {
		return true
	}
	for _, p := range set.wildcards {
		if p.Matches(o) {
			return true
		}
	}
	return false
}

// Size returns the number of distinct patterns in set.
func (set Set) Size() int {
	return len(set.raw)
}

// Patterns returns the patterns in set, sorted.
func (set Set) Patterns() []string {
	return slices.Clone(set.raw)
}

// String returns the patterns in set, sorted and comma-separated.
func (set Set) String() string {
	return strings.Join(set.raw, ",")
}
