package source

import (
	"errors"
	"fmt"
)

// Sentinel errors for listing fetches.
var (
	// ErrNotFound indicates the index or bucket path does not exist.
	ErrNotFound = errors.New("listing not found")

	// ErrAccessDenied indicates insufficient permissions.
	ErrAccessDenied = errors.New("access denied")

	// ErrBucketNotFound indicates the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnavailable indicates the backing service is unavailable.
	ErrUnavailable = errors.New("source unavailable")

	// ErrThrottled indicates the request was rate limited by the service.
	ErrThrottled = errors.New("request throttled")

	// ErrBadStatus indicates an index endpoint answered outside the 2xx range.
	ErrBadStatus = errors.New("unexpected response status")

	// ErrDecode indicates the index body was not the expected JSON array.
	ErrDecode = errors.New("listing decode failed")
)

// SourceError wraps fetch failures with context.
type SourceError struct {
	// Op is the operation that failed (e.g., "List").
	Op string

	// Kind is the source kind (e.g., "http").
	Kind Kind

	// Target is the endpoint URL, bucket, or directory involved.
	Target string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %s: %s: %v", e.Kind, e.Op, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing index or path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAccessDenied returns true if the error indicates insufficient permissions.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsBucketNotFound returns true if the error indicates the bucket does not exist.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsInvalidCredentials returns true if the error indicates authentication failed.
func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

// IsUnavailable returns true if the error indicates the backing service is unavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsThrottled returns true if the error indicates the request was rate limited.
func IsThrottled(err error) bool {
	return errors.Is(err, ErrThrottled)
}
