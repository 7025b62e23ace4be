// Package normalization maps loosely written configuration strings onto
// typed enum values.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Normalizer maps case- and whitespace-insensitive strings to values of T.
type Normalizer[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// New builds a normalizer. name is used in error messages, fallback is
// returned by Normalize for unknown input.
func New[T comparable](name string, values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{
		name:     name,
		values:   make(map[string]T, len(values)),
		fallback: fallback,
		keys:     make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	slices.Sort(n.keys)
	return n
}

// Normalize returns the matching value or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[clean(raw)]; ok {
		return v
	}
	return n.fallback
}

// Parse returns the matching value. Empty input yields the fallback; any
// other unknown input is an error listing the accepted keys.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if strings.TrimSpace(raw) == "" {
		return n.fallback, nil
	}
	if v, ok := n.values[clean(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.keys)
}

// Valid reports whether raw names a known value.
func (n *Normalizer[T]) Valid(raw string) bool {
	_, ok := n.values[clean(raw)]
	return ok
}

// Keys returns the accepted keys, sorted.
func (n *Normalizer[T]) Keys() []string {
	return slices.Clone(n.keys)
}

func clean(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "_", "-")
}
