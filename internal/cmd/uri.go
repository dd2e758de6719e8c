package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/source"
)

// Source URI parsing errors
var (
	// ErrInvalidSourceURI indicates the --source value could not be parsed.
	ErrInvalidSourceURI = errors.New("invalid source URI")

	// ErrUnsupportedScheme indicates the URI scheme is not supported.
	ErrUnsupportedScheme = errors.New("unsupported scheme")

	// ErrMissingBucket indicates an s3 URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// SourceURI represents a parsed listing source reference.
//
// Example URIs:
//   - https://cdn.example.com/index.json
//   - s3://bucket/prefix/
//   - s3://bucket/data/**/*.parquet
//   - file:///var/data/exports
//   - ./exports (bare path, local directory)
type SourceURI struct {
	// Kind is the source kind the URI resolves to.
	Kind source.Kind

	// Endpoint is the full index URL for http sources.
	Endpoint string

	// Bucket is the bucket name for s3 sources.
	Bucket string

	// Prefix is the key prefix for s3 sources. May be empty for the
	// bucket root.
	Prefix string

	// Dir is the base directory for file sources.
	Dir string

	// Pattern is set when an s3 key contains glob characters. The glob
	// becomes an include pattern and Prefix holds the static portion.
	Pattern string
}

// String returns the URI in canonical form.
func (u *SourceURI) String() string {
	switch u.Kind {
	case source.KindHTTP:
		return u.Endpoint
	case source.KindS3:
		if u.Pattern != "" {
			return fmt.Sprintf("s3://%s/%s", u.Bucket, u.Pattern)
		}
		return fmt.Sprintf("s3://%s/%s", u.Bucket, u.Prefix)
	default:
		return "file://" + u.Dir
	}
}

// ParseSourceURI parses a --source value into a typed reference.
//
// Supported formats:
//   - http:// or https:// URL of a JSON index endpoint
//   - s3://bucket, s3://bucket/prefix/, s3://bucket/data/**/*.csv
//   - file:///path/to/dir
//   - bare filesystem path (kindHint may force http, s3, or file)
//
// Returns an error if the URI is malformed or uses an unsupported scheme.
func ParseSourceURI(raw, kindHint string) (*SourceURI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidSourceURI)
	}

	// Parse manually so glob characters like ? survive; url.Parse would
	// treat them as a query delimiter.
	schemeEnd := strings.Index(raw, "://")
	if schemeEnd == -1 {
		return parseBareSource(raw, kindHint)
	}

	scheme := strings.ToLower(raw[:schemeEnd])
	rest := raw[schemeEnd+3:]

	switch scheme {
	case "http", "https":
		if _, err := url.Parse(raw); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSourceURI, raw)
		}
		return &SourceURI{Kind: source.KindHTTP, Endpoint: raw}, nil
	case "s3":
		return parseS3Source(raw, rest)
	case "file":
		if rest == "" {
			return nil, fmt.Errorf("%w: empty directory in %s", ErrInvalidSourceURI, raw)
		}
		return &SourceURI{Kind: source.KindFile, Dir: rest}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: http, https, s3, file)", ErrUnsupportedScheme, scheme)
	}
}

// parseS3Source splits an s3 remainder into bucket and key, lifting any
// glob tail out of the key so it can scope the listing as an include
// pattern instead.
func parseS3Source(raw, rest string) (*SourceURI, error) {
	if rest == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, raw)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, raw)
	}

	u := &SourceURI{Kind: source.KindS3, Bucket: bucket}
	if match.IsGlobPattern(key) {
		u.Pattern = key
		u.Prefix = match.DerivePrefix(key)
	} else {
		u.Prefix = key
	}
	return u, nil
}

// parseBareSource resolves a schemeless --source value. Without a hint a
// bare value is a local directory.
func parseBareSource(raw, kindHint string) (*SourceURI, error) {
	switch kindHint {
	case "", string(source.KindFile):
		return &SourceURI{Kind: source.KindFile, Dir: raw}, nil
	case string(source.KindS3):
		return parseS3Source("s3://"+raw, raw)
	case string(source.KindHTTP):
		return nil, fmt.Errorf("%w: http sources need a full URL, got %q", ErrInvalidSourceURI, raw)
	default:
		return nil, fmt.Errorf("%w: unknown source kind %q (supported: http, s3, file)", ErrInvalidSourceURI, kindHint)
	}
}
