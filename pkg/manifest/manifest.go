// Package manifest provides loading and validation of nimbusview view manifests.
//
// A view manifest is a YAML or JSON file that configures a browsable view of
// a bucket: where the listing comes from, where object content is served
// from, which keys to show, and how the web UI presents itself.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	source:
//	  kind: http
//	  endpoint: https://cdn.example.com/index.json
//	cdn:
//	  base_url: https://cdn.example.com
//	match:
//	  excludes:
//	    - "**/_temporary/**"
//	ui:
//	  title: Example Data
package manifest

import (
	"net/url"
	"path"

	"github.com/3leaps/nimbusview/pkg/source"
)

// Manifest represents a validated view manifest.
//
// Required fields are Version and Source. CDN, Match, and UI are optional
// with sensible defaults.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Source configures where the object listing comes from.
	Source SourceConfig `json:"source" yaml:"source"`

	// CDN configures where object content is served from (optional).
	CDN CDNConfig `json:"cdn,omitempty" yaml:"cdn,omitempty"`

	// Match configures key filtering by glob patterns (optional).
	Match MatchConfig `json:"match,omitempty" yaml:"match,omitempty"`

	// UI configures web presentation (optional).
	UI UIConfig `json:"ui,omitempty" yaml:"ui,omitempty"`
}

// SourceConfig configures the listing source.
//
// Kind selects the source type and determines which other fields apply:
//   - "http": Endpoint is the URL of a JSON listing index.
//   - "s3": Bucket is required; Prefix, Region, Endpoint, Profile optional.
//   - "file": BaseDir is a local directory; Prefix optional.
type SourceConfig struct {
	// Kind is the source type: "http", "s3", or "file".
	Kind string `json:"kind" yaml:"kind"`

	// Endpoint is the listing index URL (http) or a custom endpoint URL
	// for S3-compatible storage (s3).
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Bucket is the bucket name (s3 only).
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix scopes the listing to keys under this prefix (s3, file).
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the AWS region, e.g. "us-east-1" (s3 only).
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Profile is the AWS credential profile name (s3 only).
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// BaseDir is the local directory to list (file only).
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
}

// CDNConfig configures where object content is served from.
type CDNConfig struct {
	// BaseURL is the base URL that object keys are appended to when
	// building file links. When empty and the source kind is "http",
	// the base is derived from the index endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// MatchConfig configures key filtering by glob patterns.
//
// Both lists are optional: with no patterns the view shows every key.
type MatchConfig struct {
	// Includes is a list of glob patterns for keys to include.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes is a list of glob patterns for keys to exclude.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// UIConfig configures web presentation.
type UIConfig struct {
	// Title is the page title shown in the browse UI.
	// Default: the source description.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest.
func (m *Manifest) ApplyDefaults() {
	// An http index usually sits next to the objects it describes, so the
	// CDN base defaults to the endpoint minus the index document.
	if m.CDN.BaseURL == "" && m.Source.Kind == string(source.KindHTTP) {
		m.CDN.BaseURL = deriveCDNBase(m.Source.Endpoint)
	}
}

// deriveCDNBase strips the final path segment (the index document) from an
// index endpoint, leaving the URL objects are served under.
func deriveCDNBase(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	dir := path.Dir(u.Path)
	if dir == "." || dir == "/" {
		u.Path = ""
	} else {
		u.Path = dir
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
