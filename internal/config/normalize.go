package config

import (
	"fmt"
	"sort"
	"strings"
)

// enumNormalizer maps free-form config strings onto a closed set of values.
type enumNormalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	keys         []string
}

func newEnumNormalizer[T comparable](values map[string]T, defaultValue T) *enumNormalizer[T] {
	n := &enumNormalizer[T]{values: make(map[string]T, len(values)), defaultValue: defaultValue}
	for k, v := range values {
		key := normalizeKey(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the default value for unknown or empty input.
func (n *enumNormalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[normalizeKey(raw)]; ok {
		return v
	}
	return n.defaultValue
}

// Validate accepts empty input (the default applies) and known values.
func (n *enumNormalizer[T]) Validate(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if _, ok := n.values[normalizeKey(raw)]; ok {
		return nil
	}
	return fmt.Errorf("invalid value %q, valid options: %v", raw, n.keys)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
