package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates glob patterns against object keys.
//
// A Matcher narrows a listing with include and exclude patterns:
//   - Include patterns: key must match at least one; none means match all
//   - Exclude patterns: key must not match any
//
// The view shows everything by default, so both lists are optional.
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []pattern
	excludes []pattern
}

// pattern holds a validated pattern with its derived static prefix.
type pattern struct {
	raw    string
	prefix string
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns that keys must match (at least one).
	// Empty means every key is included.
	Includes []string

	// Excludes are glob patterns that keys must not match (any).
	// Optional: if empty, no excludes are applied.
	Excludes []string
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a Matcher from the given configuration.
//
// Patterns are normalized to handle Windows-style backslash separators
// while preserving escape sequences for literal glob metacharacters.
// Invalid patterns fail here, never at match time.
func New(cfg Config) (*Matcher, error) {
	includes, err := compile(cfg.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := compile(cfg.Excludes)
	if err != nil {
		return nil, err
	}
	return &Matcher{includes: includes, excludes: excludes}, nil
}

func compile(raws []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(raws))
	for _, raw := range raws {
		normalized := NormalizePattern(raw)
		if !doublestar.ValidatePattern(normalized) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
		patterns = append(patterns, pattern{
			raw:    normalized,
			prefix: DerivePrefix(normalized),
		})
	}
	return patterns, nil
}

// Match returns true if the key passes the include/exclude patterns.
//
// Keys are matched as-is since object keys are opaque strings where any
// character is valid.
func (m *Matcher) Match(key string) bool {
	if len(m.includes) > 0 {
		matched := false
		for _, inc := range m.includes {
			if matchPattern(inc.raw, key) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, exc := range m.excludes {
		if matchPattern(exc.raw, key) {
			return false
		}
	}

	return true
}

// Empty reports whether the matcher has no patterns at all, meaning
// Match accepts every key.
func (m *Matcher) Empty() bool {
	return len(m.includes) == 0 && len(m.excludes) == 0
}

// ScopePrefix returns the static prefix shared by every include pattern,
// usable for source-side scoping. Empty when there are no includes or
// when any include needs a full listing.
func (m *Matcher) ScopePrefix() string {
	if len(m.includes) == 0 {
		return ""
	}
	scope := m.includes[0].prefix
	for _, inc := range m.includes[1:] {
		if inc.prefix != scope {
			return ""
		}
	}
	return scope
}

// IncludePatterns returns the normalized include patterns.
func (m *Matcher) IncludePatterns() []string {
	patterns := make([]string, len(m.includes))
	for i, p := range m.includes {
		patterns[i] = p.raw
	}
	return patterns
}

// ExcludePatterns returns the normalized exclude patterns.
func (m *Matcher) ExcludePatterns() []string {
	patterns := make([]string, len(m.excludes))
	for i, p := range m.excludes {
		patterns[i] = p.raw
	}
	return patterns
}

// matchPattern matches a key against a doublestar pattern.
func matchPattern(pattern, key string) bool {
	matched, err := doublestar.Match(pattern, key)
	if err != nil {
		// Pattern was validated at construction time, so this shouldn't happen
		return false
	}
	return matched
}
