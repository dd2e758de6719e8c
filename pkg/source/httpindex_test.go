package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  HTTPConfig
		wantErr string
	}{
		{
			name:    "empty endpoint",
			config:  HTTPConfig{},
			wantErr: "endpoint is required",
		},
		{
			name:    "whitespace endpoint",
			config:  HTTPConfig{Endpoint: "   "},
			wantErr: "endpoint is required",
		},
		{
			name:    "bad scheme",
			config:  HTTPConfig{Endpoint: "ftp://example.com/index.json"},
			wantErr: "scheme must be http or https",
		},
		{
			name:    "valid http",
			config:  HTTPConfig{Endpoint: "http://localhost:9000/listing.json"},
			wantErr: "",
		},
		{
			name:    "valid https",
			config:  HTTPConfig{Endpoint: "https://files.example.com/index.json"},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestHTTPIndex_List(t *testing.T) {
	const body = `[
		{"Key":"docs/readme.md","Size":512,"LastModified":"2024-03-01T10:30:00Z"},
		{"Key":"docs/guide.pdf","Size":2048,"LastModified":"2024-03-02T08:00:00.500Z"},
		{"Key":"index.html","Size":128,"LastModified":"2024-02-28T23:59:59Z"}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.URL.RawQuery)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	objects, err := idx.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 3)

	// Source order is preserved verbatim.
	assert.Equal(t, "docs/readme.md", objects[0].Key)
	assert.Equal(t, int64(512), objects[0].Size)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), objects[0].LastModified)

	assert.Equal(t, "docs/guide.pdf", objects[1].Key)
	assert.Equal(t, int64(2048), objects[1].Size)

	assert.Equal(t, "index.html", objects[2].Key)
}

func TestHTTPIndex_List_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	objects, err := idx.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestHTTPIndex_List_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected error
	}{
		{"404 not found", http.StatusNotFound, ErrNotFound},
		{"401 unauthorized", http.StatusUnauthorized, ErrAccessDenied},
		{"403 forbidden", http.StatusForbidden, ErrAccessDenied},
		{"429 throttled", http.StatusTooManyRequests, ErrThrottled},
		{"500 internal", http.StatusInternalServerError, ErrUnavailable},
		{"503 unavailable", http.StatusServiceUnavailable, ErrUnavailable},
		{"418 other", http.StatusTeapot, ErrBadStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			idx, err := NewHTTPIndex(HTTPConfig{Endpoint: srv.URL})
			require.NoError(t, err)

			_, err = idx.List(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var srcErr *SourceError
			require.ErrorAs(t, err, &srcErr)
			assert.Equal(t, "List", srcErr.Op)
			assert.Equal(t, KindHTTP, srcErr.Kind)
		})
	}
}

func TestHTTPIndex_List_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = idx.List(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestHTTPIndex_List_ConnectionRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: endpoint, Timeout: 2 * time.Second})
	require.NoError(t, err)

	_, err = idx.List(context.Background())
	require.Error(t, err)

	var srcErr *SourceError
	assert.ErrorAs(t, err, &srcErr)
}

func TestHTTPIndex_List_MalformedTimestamp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"Key":"a.txt","Size":1,"LastModified":"not-a-date"}]`))
	}))
	defer srv.Close()

	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: srv.URL})
	require.NoError(t, err)

	objects, err := idx.List(context.Background())
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.True(t, objects[0].LastModified.IsZero())
}

func TestHTTPIndex_String(t *testing.T) {
	idx, err := NewHTTPIndex(HTTPConfig{Endpoint: "https://files.example.com/index.json"})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/index.json", idx.String())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", "2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"rfc3339 fractional", "2024-03-01T10:30:00.250Z", time.Date(2024, 3, 1, 10, 30, 0, 250_000_000, time.UTC)},
		{"rfc3339 offset", "2024-03-01T10:30:00+02:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.FixedZone("", 2*3600))},
		{"no zone", "2024-03-01T10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"space separator", "2024-03-01 10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "not-a-date", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTimestamp(tt.input)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}
