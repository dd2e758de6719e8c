package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds the single index fetch when the caller's
// context carries no earlier deadline.
const DefaultHTTPTimeout = 60 * time.Second

// HTTPConfig configures an HTTP index source.
type HTTPConfig struct {
	// Endpoint is the URL returning the JSON listing (required).
	// The endpoint is fetched with a plain GET: no query parameters,
	// no authentication headers, no pagination.
	Endpoint string

	// Timeout bounds the fetch. Zero uses DefaultHTTPTimeout.
	Timeout time.Duration
}

// Validate checks that required configuration is present.
func (c HTTPConfig) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// HTTPIndex fetches a flat listing from a JSON index endpoint.
//
// The endpoint must return a JSON array of objects with Key (string),
// Size (integer byte count), and LastModified (ISO-8601 timestamp string)
// fields. Records with unparseable timestamps keep a zero LastModified
// rather than failing the fetch.
type HTTPIndex struct {
	endpoint string
	client   *http.Client
}

// Ensure HTTPIndex implements the interface.
var _ Source = (*HTTPIndex)(nil)

// NewHTTPIndex creates an HTTP index source with the given configuration.
func NewHTTPIndex(cfg HTTPConfig) (*HTTPIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &SourceError{Op: "New", Kind: KindHTTP, Target: cfg.Endpoint, Err: err}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}

	return &HTTPIndex{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// indexRecord is the wire shape of one index entry.
type indexRecord struct {
	Key          string `json:"Key"`
	Size         int64  `json:"Size"`
	LastModified string `json:"LastModified"`
}

// List fetches and decodes the complete listing.
func (h *HTTPIndex) List(ctx context.Context) ([]Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return nil, h.wrapError("List", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, h.wrapError("List", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, h.wrapError("List", statusError(resp.StatusCode))
	}

	var raw []indexRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, h.wrapError("List", fmt.Errorf("%w: %v", ErrDecode, err))
	}

	objects := make([]Object, 0, len(raw))
	for _, r := range raw {
		objects = append(objects, Object{
			Key:          r.Key,
			Size:         r.Size,
			LastModified: parseTimestamp(r.LastModified),
		})
	}
	return objects, nil
}

// String returns the endpoint URL.
func (h *HTTPIndex) String() string {
	return h.endpoint
}

// statusError maps an HTTP status to a sentinel error.
func statusError(code int) error {
	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, code)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAccessDenied, code)
	case code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrThrottled, code)
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrBadStatus, code)
	}
}

// timestampLayouts are tried in order when parsing index timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses an ISO-8601-ish timestamp, returning the zero
// time when no layout matches. Malformed records flow through unvalidated.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (h *HTTPIndex) wrapError(op string, err error) error {
	return &SourceError{Op: op, Kind: KindHTTP, Target: h.endpoint, Err: err}
}
