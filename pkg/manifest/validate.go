package manifest

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/source"
)

// Validation errors
var (
	// ErrValidationFailed indicates the manifest failed validation.
	ErrValidationFailed = errors.New("manifest validation failed")
)

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path is the JSON pointer to the problematic field (e.g., "/source/kind").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("manifest validation failed with ")
	b.WriteString(fmt.Sprintf("%d errors:\n", len(e)))
	for i, err := range e {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error type.
func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Validate checks the manifest field by field.
//
// Returns nil if validation succeeds, or a ValidationErrors with details
// about all validation failures. Every problem is reported, not just the
// first one, so a bad manifest can be fixed in one pass.
func (m *Manifest) Validate() error {
	var errs ValidationErrors

	switch m.Version {
	case "":
		errs = append(errs, ValidationError{Path: "/version", Message: "version is required"})
	case DefaultVersion:
		// current version
	default:
		errs = append(errs, ValidationError{
			Path:    "/version",
			Message: fmt.Sprintf("unsupported version %q (expected %q)", m.Version, DefaultVersion),
		})
	}

	errs = append(errs, m.Source.validate()...)

	if m.CDN.BaseURL != "" {
		if err := validateHTTPURL(m.CDN.BaseURL); err != nil {
			errs = append(errs, ValidationError{Path: "/cdn/base_url", Message: err.Error()})
		}
	}

	errs = append(errs, validatePatterns("/match/includes", m.Match.Includes)...)
	errs = append(errs, validatePatterns("/match/excludes", m.Match.Excludes)...)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (c *SourceConfig) validate() ValidationErrors {
	var errs ValidationErrors

	switch c.Kind {
	case "":
		errs = append(errs, ValidationError{Path: "/source/kind", Message: "kind is required"})
	case string(source.KindHTTP):
		if c.Endpoint == "" {
			errs = append(errs, ValidationError{Path: "/source/endpoint", Message: "endpoint is required for http sources"})
		} else if err := validateHTTPURL(c.Endpoint); err != nil {
			errs = append(errs, ValidationError{Path: "/source/endpoint", Message: err.Error()})
		}
	case string(source.KindS3):
		if c.Bucket == "" {
			errs = append(errs, ValidationError{Path: "/source/bucket", Message: "bucket is required for s3 sources"})
		}
	case string(source.KindFile):
		if c.BaseDir == "" {
			errs = append(errs, ValidationError{Path: "/source/base_dir", Message: "base_dir is required for file sources"})
		}
	default:
		errs = append(errs, ValidationError{
			Path:    "/source/kind",
			Message: fmt.Sprintf("unsupported kind %q (expected http, s3, or file)", c.Kind),
		})
	}

	return errs
}

// validatePatterns checks each glob pattern, reporting the index of any
// invalid entry as a JSON pointer.
func validatePatterns(basePath string, patterns []string) ValidationErrors {
	var errs ValidationErrors
	for i, p := range patterns {
		if !doublestar.ValidatePattern(match.NormalizePattern(p)) {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("%s/%d", basePath, i),
				Message: fmt.Sprintf("invalid glob pattern %q", p),
			})
		}
	}
	return errs
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL host is required")
	}
	return nil
}
