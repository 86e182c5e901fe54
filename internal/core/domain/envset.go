package domain

import (
	"slices"
	"strings"
)

// EnvironmentSet is a mapping from environment variable name to value,
// applied process-wide to every process started in the resulting image.
//
// Keys are unique; a later Set of an existing key overrides the earlier
// value. Among distinct keys the set is order-independent: Sorted renders
// assignments in key order so hashing and rendering are deterministic.
type EnvironmentSet struct {
	values map[string]string
}

// NewEnvironmentSet creates an empty EnvironmentSet.
func NewEnvironmentSet() EnvironmentSet {
	return EnvironmentSet{values: make(map[string]string)}
}

// Set assigns value to key, replacing any earlier assignment.
func (e *EnvironmentSet) Set(key, value string) {
	if e.values == nil {
		e.values = make(map[string]string)
	}
	e.values[key] = value
}

// Get returns the value for key and whether it is present.
func (e EnvironmentSet) Get(key string) (string, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Len returns the number of distinct keys.
func (e EnvironmentSet) Len() int {
	return len(e.values)
}

// Sorted returns the assignments as "KEY=VALUE" strings sorted by key.
func (e EnvironmentSet) Sorted() []string {
	if len(e.values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + e.values[k]
	}
	return pairs
}

// ParseAssignment splits a "KEY=VALUE" string. It returns ok=false when the
// string has no '=' or an empty key.
func ParseAssignment(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", false
	}
	return key, value, true
}
