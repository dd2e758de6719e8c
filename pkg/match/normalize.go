// Package match provides pattern matching for object keys using
// doublestar semantics with prefix derivation for scoped listing.
package match

import (
	"strings"
)

// Glob metacharacters that can be escaped with backslash in patterns.
const globEscapable = `*?[]{}\`

// NormalizePattern converts a user-provided glob pattern to canonical form.
//
// Normalization rules:
//   - Unescaped backslashes converted to forward slashes (Windows compat)
//   - Escaped backslashes and glob metacharacters preserved (\*, \?, \[, etc.)
//   - Leading slash, trailing slash, and // sequences preserved
//
// This allows Windows users to write patterns like "data\2024\**\*.parquet"
// while preserving escape semantics for literal matching.
//
// Examples:
//
//	"data/2024/**"        → "data/2024/**"       (unchanged)
//	"data\2024\**"        → "data/2024/**"       (backslash → slash)
//	"data/file\*.txt"     → "data/file\*.txt"    (escape preserved)
//	"/data/2024/**"       → "/data/2024/**"      (leading slash preserved)
//	"data//2024/**"       → "data//2024/**"      (// preserved)
func NormalizePattern(pattern string) string {
	if pattern == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(pattern))

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\\' && i+1 < len(runes) {
			next := runes[i+1]
			// Check if this is an escape sequence for a glob metacharacter
			if strings.ContainsRune(globEscapable, next) {
				// Preserve the escape sequence
				result.WriteRune('\\')
				result.WriteRune(next)
				i++ // Skip the next character
				continue
			}
			// Unescaped backslash - convert to forward slash
			result.WriteRune('/')
			continue
		}

		if r == '\\' {
			// Trailing backslash - convert to forward slash
			result.WriteRune('/')
			continue
		}

		result.WriteRune(r)
	}

	return result.String()
}

// HasTrailingSlash returns true if the key ends with a slash.
// This typically indicates a folder prefix rather than a file.
func HasTrailingSlash(key string) bool {
	return len(key) > 0 && key[len(key)-1] == '/'
}

// EnsureTrailingSlash adds a trailing slash if not present.
// Returns empty string unchanged.
func EnsureTrailingSlash(key string) string {
	if key == "" {
		return ""
	}
	if !HasTrailingSlash(key) {
		return key + "/"
	}
	return key
}
