// Package cdn builds outbound content-delivery URLs for file entries.
//
// File rows link straight to <base>/<fullPath> on the delivery host; no
// signing and no access control are applied here.
package cdn

import (
	"fmt"
	"net/url"
	"strings"
)

// Links joins object keys onto a content-delivery base URL.
type Links struct {
	base string
}

// New validates the base URL and returns a link builder.
// A trailing slash on the base is trimmed.
func New(base string) (*Links, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("content delivery base is required")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("content delivery base is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("content delivery base scheme must be http or https, got %q", u.Scheme)
	}
	return &Links{base: trimmed}, nil
}

// Base returns the normalized base URL.
func (l *Links) Base() string {
	return l.base
}

// ObjectURL returns the delivery URL for a full object key. Each path
// segment is escaped; the slashes between segments are preserved.
func (l *Links) ObjectURL(fullPath string) string {
	segs := strings.Split(fullPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return l.base + "/" + strings.Join(segs, "/")
}
