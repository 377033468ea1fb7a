// Package capability describes which optional query features a backing store
// supports. Schema construction consults a Set read-only when it decides
// which filter fields and arguments to expose.
package capability

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Capability is a single optional feature.
type Capability uint

const (
	// RelationFilters exposes filters that traverse relations
	// (some/every/none on lists, nested where on single relations).
	RelationFilters Capability = 1 << iota
	// ScalarListFilters exposes has/hasEvery/hasSome/isEmpty on scalar lists.
	ScalarListFilters
	// InsensitiveFilters adds a case-insensitive mode to string filters.
	InsensitiveFilters
	// JSONFilters makes JSON fields filterable by equality.
	JSONFilters
	// PaginatedRelations adds the many-records arguments to to-many
	// relation fields of object types.
	PaginatedRelations
)

// ErrUnknownCapability is returned by Parse for names it does not know.
var ErrUnknownCapability = errors.New("unknown capability")

var names = map[Capability]string{
	RelationFilters:    "relation_filters",
	ScalarListFilters:  "scalar_list_filters",
	InsensitiveFilters: "insensitive_filters",
	JSONFilters:        "json_filters",
	PaginatedRelations: "paginated_relations",
}

// String returns the configuration name of c.
func (c Capability) String() string {
	if n, ok := names[c]; ok {
		return n
	}
	return fmt.Sprintf("capability(%d)", uint(c))
}

// Set is an immutable set of capabilities.
type Set struct {
	bits Capability
}

// NewSet returns a Set containing caps.
func NewSet(caps ...Capability) Set {
	var s Set
	for _, c := range caps {
		s.bits |= c
	}
	return s
}

// All returns a Set with every known capability enabled.
func All() Set {
	var s Set
	for c := range names {
		s.bits |= c
	}
	return s
}

// Has reports whether c is enabled.
func (s Set) Has(c Capability) bool {
	return s.bits&c != 0
}

// With returns a copy of s with caps enabled.
func (s Set) With(caps ...Capability) Set {
	out := s
	for _, c := range caps {
		out.bits |= c
	}
	return out
}

// Names returns the sorted configuration names of the enabled capabilities.
func (s Set) Names() []string {
	var out []string
	for c, n := range names {
		if s.Has(c) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Names(), ",") + "}"
}

// Parse builds a Set from configuration names. "all" enables every
// capability.
func Parse(values []string) (Set, error) {
	var s Set
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if v == "all" {
			s.bits |= All().bits
			continue
		}
		found := false
		for c, n := range names {
			if n == v {
				s.bits |= c
				found = true
				break
			}
		}
		if !found {
			return Set{}, fmt.Errorf("%w: %q", ErrUnknownCapability, v)
		}
	}
	return s, nil
}
