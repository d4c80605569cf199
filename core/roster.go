package core

import (
	"fmt"
	"sort"
)

// ValidateRoster checks names are non-empty and unique and returns them in
// roster order.
func ValidateRoster(members []Agent) ([]string, error) {
	if len(members) == 0 {
		return nil, ErrEmptyRoster
	}
	names := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for i, a := range members {
		if a == nil || a.Name() == "" {
			return nil, fmt.Errorf("member %d: %w", i, ErrInvalidAgentName)
		}
		if _, dup := seen[a.Name()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAgent, a.Name())
		}
		seen[a.Name()] = struct{}{}
		names = append(names, a.Name())
	}
	return names, nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
