// Package source defines where a listing snapshot comes from.
//
// A Source produces the complete flat object listing for one view session
// in a single call. Implementations cover an HTTP JSON index, direct S3
// listing, and a local directory. Authentication uses SDK default
// credential chains - sources should not implement custom auth logic.
package source

import (
	"context"
	"time"
)

// Source produces the full flat listing for a session.
//
// Implementations should:
//   - Return every object in source order with one List call
//   - Be safe for concurrent use
type Source interface {
	// List returns the complete flat listing in source order.
	// It is called exactly once per view session.
	List(ctx context.Context) ([]Object, error)

	// String describes the source in URI form for logs and records.
	String() string
}

// Object is one immutable listing record.
type Object struct {
	// Key is the full slash-delimited object key, without a leading slash.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag when the source provides one.
	ETag string

	// LastModified is when the object was last modified.
	// Zero when the source carried no parseable timestamp.
	LastModified time.Time
}

// Kind identifies a listing source implementation.
type Kind string

const (
	// KindHTTP represents an HTTP JSON index endpoint.
	KindHTTP Kind = "http"

	// KindS3 represents AWS S3 or S3-compatible storage.
	KindS3 Kind = "s3"

	// KindFile represents a local directory.
	KindFile Kind = "file"
)

// String returns the string representation of the source kind.
func (k Kind) String() string {
	return string(k)
}
