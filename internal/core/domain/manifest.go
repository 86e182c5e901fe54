package domain

import "slices"

// PackageSet is a normalized set of OS-level package names.
//
// Normalization makes two invariants hold by construction: duplicates are
// idempotent (re-listing a package changes nothing) and declaration order
// never affects the installed set or the cache key.
type PackageSet struct {
	names []string
}

// NewPackageSet builds a PackageSet from raw names, deduplicating and
// sorting them.
func NewPackageSet(names []string) PackageSet {
	if len(names) == 0 {
		return PackageSet{}
	}

	sorted := make([]string, len(names))
	copy(sorted, names)
	slices.Sort(sorted)

	return PackageSet{names: slices.Compact(sorted)}
}

// Names returns the normalized package names. The returned slice must not
// be mutated.
func (p PackageSet) Names() []string {
	return p.names
}

// Len returns the number of distinct packages.
func (p PackageSet) Len() int {
	return len(p.names)
}

// IsEmpty reports whether the set contains no packages.
func (p PackageSet) IsEmpty() bool {
	return len(p.names) == 0
}
