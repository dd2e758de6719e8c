package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/source"
)

func writeTestManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "view.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolveViewSpecFromSourceFlag(t *testing.T) {
	spec, err := resolveViewSpec("", "https://cdn.example.com/index.json", "",
		"", "", "", "https://cdn.example.com", "Example Data", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, source.KindHTTP, spec.URI.Kind)
	assert.Equal(t, "https://cdn.example.com/index.json", spec.URI.Endpoint)
	assert.Equal(t, "https://cdn.example.com", spec.CDNBase)
	assert.Equal(t, "Example Data", spec.Title)
}

func TestResolveViewSpecFromManifest(t *testing.T) {
	path := writeTestManifest(t, `version: "1.0"
source:
  kind: http
  endpoint: https://cdn.example.com/index.json
cdn:
  base_url: https://cdn.example.com/files
match:
  excludes:
    - "**/_temporary/**"
ui:
  title: Public Exports
`)

	spec, err := resolveViewSpec(path, "", "", "", "", "", "", "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, source.KindHTTP, spec.URI.Kind)
	assert.Equal(t, "https://cdn.example.com/index.json", spec.URI.Endpoint)
	assert.Equal(t, "https://cdn.example.com/files", spec.CDNBase)
	assert.Equal(t, "Public Exports", spec.Title)
	assert.Equal(t, []string{"**/_temporary/**"}, spec.Excludes)
}

func TestResolveViewSpecFlagsOverrideManifest(t *testing.T) {
	path := writeTestManifest(t, `version: "1.0"
source:
  kind: http
  endpoint: https://cdn.example.com/index.json
ui:
  title: Manifest Title
`)

	spec, err := resolveViewSpec(path, "s3://other-bucket/data/", "",
		"eu-west-1", "", "", "", "Flag Title", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, source.KindS3, spec.URI.Kind)
	assert.Equal(t, "other-bucket", spec.URI.Bucket)
	assert.Equal(t, "data/", spec.URI.Prefix)
	assert.Equal(t, "eu-west-1", spec.Region)
	assert.Equal(t, "Flag Title", spec.Title)
}

func TestResolveViewSpecS3Manifest(t *testing.T) {
	path := writeTestManifest(t, `version: "1.0"
source:
  kind: s3
  bucket: my-bucket
  prefix: data/
  region: us-east-1
  endpoint: http://localhost:9000
`)

	spec, err := resolveViewSpec(path, "", "", "", "", "", "", "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, source.KindS3, spec.URI.Kind)
	assert.Equal(t, "my-bucket", spec.URI.Bucket)
	assert.Equal(t, "data/", spec.URI.Prefix)
	assert.Equal(t, "us-east-1", spec.Region)
	assert.Equal(t, "http://localhost:9000", spec.Endpoint)
}

func TestResolveViewSpecGlobTailBecomesInclude(t *testing.T) {
	spec, err := resolveViewSpec("", "s3://my-bucket/data/**/*.csv", "",
		"", "", "", "", "", []string{"**/*.json"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "data/", spec.URI.Prefix)
	assert.Equal(t, []string{"**/*.json", "data/**/*.csv"}, spec.Includes)
}

func TestResolveViewSpecRequiresSource(t *testing.T) {
	_, err := resolveViewSpec("", "", "", "", "", "", "", "", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing source is required")
}

func TestResolveViewSpecBadManifest(t *testing.T) {
	_, err := resolveViewSpec(filepath.Join(t.TempDir(), "missing.yaml"),
		"", "", "", "", "", "", "", nil, nil)
	require.Error(t, err)
}

func TestFilterObjects(t *testing.T) {
	matcher, err := match.New(match.Config{Includes: []string{"data/**"}})
	require.NoError(t, err)

	kept := filterObjects(testObjects(), matcher)
	require.Len(t, kept, 2)
	assert.Equal(t, "data/2024/january.csv", kept[0].Key)
	assert.Equal(t, "data/archive.zip", kept[1].Key)
}

func TestBuildSource(t *testing.T) {
	ctx := context.Background()

	t.Run("file source", func(t *testing.T) {
		dir := t.TempDir()
		uri, err := ParseSourceURI(dir, "")
		require.NoError(t, err)

		src, err := buildSource(ctx, &viewSpec{URI: uri})
		require.NoError(t, err)
		assert.Contains(t, src.String(), "file://")
	})

	t.Run("http source", func(t *testing.T) {
		uri, err := ParseSourceURI("https://cdn.example.com/index.json", "")
		require.NoError(t, err)

		src, err := buildSource(ctx, &viewSpec{URI: uri})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/index.json", src.String())
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := buildSource(ctx, &viewSpec{URI: &SourceURI{Kind: source.Kind("ftp")}})
		require.Error(t, err)
	})
}
