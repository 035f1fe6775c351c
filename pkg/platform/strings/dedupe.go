// Package strings provides string slice utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and empty strings from a slice,
// trimming whitespace from each element. Order is preserved.
//
// Example:
//
//	DedupeAndTrim([]string{"  email ", "phone_number", "email", "", "  "})
//	// Returns: []string{"email", "phone_number"}
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimLower is like DedupeAndTrim but also lowercases each element.
func DedupeAndTrimLower(values []string) []string {
	return dedupe(values, func(v string) string {
		return strings.ToLower(strings.TrimSpace(v))
	})
}

// DedupeAndTrimUpper is like DedupeAndTrim but also uppercases each element.
// Product and source identifiers are stored upper-case.
func DedupeAndTrimUpper(values []string) []string {
	return dedupe(values, func(v string) string {
		return strings.ToUpper(strings.TrimSpace(v))
	})
}

// AppendMissing appends each non-empty value not already in dst. Existing
// order is kept and new values go to the end, so the result is a set that
// only grows.
func AppendMissing(dst []string, values ...string) []string {
	for _, v := range values {
		if v == "" || Contains(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

// Contains reports whether v is in values.
func Contains(values []string, v string) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}

func dedupe(values []string, clean func(string) string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		cleaned := clean(v)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; !ok {
			seen[cleaned] = struct{}{}
			result = append(result, cleaned)
		}
	}

	return result
}
