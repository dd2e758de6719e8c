package match

import (
	"strings"
)

// DerivePrefix extracts the longest static prefix from a glob pattern.
//
// The prefix is the portion of the pattern before any unescaped glob
// metacharacter, truncated to a whole path segment. Escaped
// metacharacters (\*, \?, \[, \{) are treated as literals and included.
// The result can scope a bucket listing so fewer keys are fetched before
// filtering.
//
// Examples:
//
//	"data/2024/**/*.parquet" → "data/2024/"
//	"*.json"                 → ""
//	"logs/app-{a,b}/*.log"   → "logs/"
//	"exact/path/file.txt"    → "exact/path/file.txt"
//	"data/file\*.txt"        → "data/file*.txt" (escaped * is literal)
func DerivePrefix(pattern string) string {
	if pattern == "" {
		return ""
	}

	pattern = NormalizePattern(pattern)

	metaIdx := findFirstUnescapedMeta(pattern)
	if metaIdx == -1 {
		// No unescaped metacharacters - pattern is an exact match.
		return unescapePrefix(pattern)
	}
	if metaIdx == 0 {
		return ""
	}

	prefix := pattern[:metaIdx]

	// Truncate to last complete path segment
	// e.g., "data/2024-" becomes "data/" not "data/2024-"
	lastSlash := strings.LastIndex(prefix, "/")
	if lastSlash >= 0 {
		return unescapePrefix(prefix[:lastSlash+1])
	}

	// No slash before metacharacter - no usable prefix
	return ""
}

// IsGlobPattern reports whether the pattern contains unescaped glob
// metacharacters. Escaped metacharacters (\*, \?) are literals and do
// not count.
func IsGlobPattern(pattern string) bool {
	return findFirstUnescapedMeta(NormalizePattern(pattern)) != -1
}

// findFirstUnescapedMeta returns the index of the first unescaped glob
// metacharacter (* ? [ {) in the pattern, or -1 if none found.
//
// A plain string search cannot distinguish literal metacharacters
// (escaped with \) from glob metacharacters, so patterns like
// "data/file\*.txt" need this scan to avoid terminating at \*.
func findFirstUnescapedMeta(pattern string) int {
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if c == '\\' && i+1 < len(pattern) {
			next := pattern[i+1]
			// Escaped metacharacter or backslash: skip both bytes.
			if next == '*' || next == '?' || next == '[' || next == '{' || next == '\\' {
				i++
				continue
			}
			continue
		}

		if c == '*' || c == '?' || c == '[' || c == '{' {
			return i
		}
	}
	return -1
}

// unescapePrefix removes escape backslashes from glob metacharacters in a
// prefix. Object keys are opaque strings without escape sequences, so a
// pattern prefix "data/file\*.txt" must become the key prefix
// "data/file*.txt" before it can scope a listing.
func unescapePrefix(prefix string) string {
	if !strings.ContainsRune(prefix, '\\') {
		return prefix
	}

	var result strings.Builder
	result.Grow(len(prefix))

	for i := 0; i < len(prefix); i++ {
		c := prefix[i]

		if c == '\\' && i+1 < len(prefix) {
			next := prefix[i+1]
			if next == '*' || next == '?' || next == '[' || next == ']' ||
				next == '{' || next == '}' || next == '\\' {
				result.WriteByte(next)
				i++
				continue
			}
		}

		result.WriteByte(c)
	}

	return result.String()
}
