package manifest

import "strings"

// CategorySet is an immutable set of category names. The empty string is a
// valid member and matches uncategorised emoji.
type CategorySet struct {
	names []string
	set   map[string]struct{}
}

// ParseCategories splits s on commas. Every segment is kept verbatim, so ""
// yields the single empty category and "a," yields "a" and "".
func ParseCategories(s string) CategorySet {
	return NewCategorySet(strings.Split(s, ",")...)
}

// NewCategorySet builds a set from names, dropping duplicates.
func NewCategorySet(names ...string) CategorySet {
	cs := CategorySet{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, ok := cs.set[n]; ok {
			continue
		}
		cs.set[n] = struct{}{}
		cs.names = append(cs.names, n)
	}
	return cs
}

// Contains reports whether category is a member, using exact comparison.
func (cs CategorySet) Contains(category string) bool {
	_, ok := cs.set[category]
	return ok
}

// Names returns the members in the order they were first given.
func (cs CategorySet) Names() []string {
	out := make([]string, len(cs.names))
	copy(out, cs.names)
	return out
}

// Len returns the number of distinct categories.
func (cs CategorySet) Len() int {
	return len(cs.names)
}

func (cs CategorySet) String() string {
	quoted := make([]string, len(cs.names))
	for i, n := range cs.names {
		quoted[i] = `"` + n + `"`
	}
	return "{" + strings.Join(quoted, ", ") + "}"
}
