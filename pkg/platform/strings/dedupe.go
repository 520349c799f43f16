// Package strings provides small string-slice helpers shared across features.
package strings

import "strings"

// DedupeAndTrim trims every element, drops blanks, and removes duplicates
// while preserving first-seen order. Used to normalize caller-supplied lists
// such as push-notification device tokens before they are persisted.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
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
