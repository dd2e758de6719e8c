package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/nimbusview/internal/server/handlers"
	"github.com/3leaps/nimbusview/pkg/browse"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// what it wrote. fn must succeed.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := fn()

	require.NoError(t, w.Close())
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	require.NoError(t, runErr)
	return buf.String()
}

// writeListingDir builds a local directory that lists as three objects.
func writeListingDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# readme"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "2024", "january.csv"), []byte("a,b\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data", "archive.zip"), make([]byte, 1024), 0o644))
	return dir
}

func resetBrowseFlags() {
	browseSource, browseSourceKind, browseManifest = "", "", ""
	browsePath, browseCDNBase = "", ""
	browseJSON = false
	browseIncludes, browseExcludes = nil, nil
	browseRegion, browseProfile, browseEndpoint = "", "", ""
	rootCmd.SetArgs(nil)
}

func TestPrintListing(t *testing.T) {
	entries := browse.Children(testObjects(), "")
	require.Len(t, entries, 2)

	var buf bytes.Buffer
	require.NoError(t, printListing(&buf, "static://test", "", entries, 3))

	out := buf.String()
	assert.Contains(t, out, "Source: static://test")
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "readme.md")
	assert.Contains(t, out, "512 B")
	assert.Contains(t, out, "data/")
	assert.Contains(t, out, "2 entries (3 objects in listing)")
}

func TestPrintListingEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printListing(&buf, "static://test", "nope/", nil, 3))
	assert.Contains(t, buf.String(), "No entries at this path.")
}

func TestBrowseCommandTable(t *testing.T) {
	defer resetBrowseFlags()
	dir := writeListingDir(t)

	rootCmd.SetArgs([]string{"browse", "--source", dir})
	rootCmd.SetContext(context.Background())

	out := captureStdout(t, rootCmd.Execute)

	assert.Contains(t, out, "folder")
	assert.Contains(t, out, "data/")
	assert.Contains(t, out, "file")
	assert.Contains(t, out, "readme.md")
	assert.Contains(t, out, "2 entries (3 objects in listing)")
}

func TestBrowseCommandJSON(t *testing.T) {
	defer resetBrowseFlags()
	dir := writeListingDir(t)

	rootCmd.SetArgs([]string{"browse", "--source", dir, "--json", "--path", "data/"})
	rootCmd.SetContext(context.Background())

	out := captureStdout(t, rootCmd.Execute)

	var resp handlers.ListingResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "data/", resp.Path)
	assert.Equal(t, "loaded", resp.State)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "folder", resp.Entries[0].Kind)
	assert.Equal(t, "2024", resp.Entries[0].Name)
	assert.Equal(t, "file", resp.Entries[1].Kind)
	assert.Equal(t, "archive.zip", resp.Entries[1].Name)
	require.Len(t, resp.Breadcrumbs, 1)
	assert.Equal(t, "data", resp.Breadcrumbs[0].Label)
}

func TestBrowseCommandIncludeFilter(t *testing.T) {
	defer resetBrowseFlags()
	dir := writeListingDir(t)

	rootCmd.SetArgs([]string{"browse", "--source", dir, "--json", "--include", "**/*.csv"})
	rootCmd.SetContext(context.Background())

	out := captureStdout(t, rootCmd.Execute)

	var resp handlers.ListingResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "folder", resp.Entries[0].Kind)
	assert.Equal(t, "data", resp.Entries[0].Name)
}

func TestBrowseCommandMissingSource(t *testing.T) {
	defer resetBrowseFlags()

	rootCmd.SetArgs([]string{"browse"})
	rootCmd.SetContext(context.Background())

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing source is required")
}
