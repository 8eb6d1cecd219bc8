// Package strings holds small string-slice helpers for configuration lists.
package strings

import "strings"

// DedupeAndTrim trims whitespace from each element and drops empties and
// duplicates. First-seen order is preserved.
func DedupeAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
