package browse

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/nimbusview/pkg/source"
)

func records(keys ...string) []source.Object {
	objs := make([]source.Object, 0, len(keys))
	for i, k := range keys {
		objs = append(objs, source.Object{
			Key:          k,
			Size:         int64((i + 1) * 100),
			LastModified: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		})
	}
	return objs
}

func TestChildren_Root(t *testing.T) {
	recs := records("a/b.txt", "a/c.txt", "d.txt")

	entries := Children(recs, "")
	require.Len(t, entries, 2)

	assert.Equal(t, KindFolder, entries[0].Kind)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "a/", entries[0].FullPath)
	assert.Nil(t, entries[0].Object)

	assert.Equal(t, KindFile, entries[1].Kind)
	assert.Equal(t, "d.txt", entries[1].Name)
	assert.Equal(t, "d.txt", entries[1].FullPath)
	require.NotNil(t, entries[1].Object)
	assert.Equal(t, "d.txt", entries[1].Object.Key)
}

func TestChildren_InsideFolder(t *testing.T) {
	recs := records("a/b.txt", "a/c.txt", "d.txt")

	entries := Children(recs, "a/")
	require.Len(t, entries, 2)

	assert.Equal(t, KindFile, entries[0].Kind)
	assert.Equal(t, "b.txt", entries[0].Name)
	assert.Equal(t, "a/b.txt", entries[0].FullPath)

	assert.Equal(t, KindFile, entries[1].Kind)
	assert.Equal(t, "c.txt", entries[1].Name)
	assert.Equal(t, "a/c.txt", entries[1].FullPath)
}

func TestChildren_UnmatchedPath(t *testing.T) {
	recs := records("a/b.txt", "d.txt")
	assert.Empty(t, Children(recs, "z/"))
}

func TestChildren_KeyEqualsPath(t *testing.T) {
	// A record whose key exactly equals the path has an empty remainder
	// and contributes nothing.
	recs := records("a/")
	assert.Empty(t, Children(recs, "a/"))
}

func TestChildren_EmptyRecords(t *testing.T) {
	assert.Empty(t, Children(nil, ""))
	assert.Empty(t, Children([]source.Object{}, "x/"))
}

func TestChildren_DeepNestingOneLevel(t *testing.T) {
	// Only direct children appear, however deep the keys go.
	recs := records("a/b/c/d.txt", "a/b/e.txt", "a/f.txt")

	entries := Children(recs, "a/")
	require.Len(t, entries, 2)
	assert.Equal(t, KindFolder, entries[0].Kind)
	assert.Equal(t, "b", entries[0].Name)
	assert.Equal(t, "a/b/", entries[0].FullPath)
	assert.Equal(t, KindFile, entries[1].Kind)
	assert.Equal(t, "f.txt", entries[1].Name)

	inner := Children(recs, "a/b/")
	require.Len(t, inner, 2)
	assert.Equal(t, KindFolder, inner[0].Kind)
	assert.Equal(t, "c", inner[0].Name)
	assert.Equal(t, "a/b/c/", inner[0].FullPath)
	assert.Equal(t, KindFile, inner[1].Kind)
	assert.Equal(t, "e.txt", inner[1].Name)
}

func TestChildren_FolderCollapsed(t *testing.T) {
	// Many records under one prefix collapse into a single folder entry.
	recs := records("img/1.png", "img/2.png", "img/3.png")

	entries := Children(recs, "")
	require.Len(t, entries, 1)
	assert.Equal(t, KindFolder, entries[0].Kind)
	assert.Equal(t, "img", entries[0].Name)
}

func TestChildren_DuplicateNameFirstWins(t *testing.T) {
	// A file and a folder sharing a display name keep the first occurrence
	// in input order; later records with that name are dropped.
	recs := records("report", "report/q1.csv")

	entries := Children(recs, "")
	require.Len(t, entries, 1)
	assert.Equal(t, KindFile, entries[0].Kind)
	assert.Equal(t, "report", entries[0].Name)
	assert.Equal(t, "report", entries[0].FullPath)

	reversed := records("report/q1.csv", "report")
	entries = Children(reversed, "")
	require.Len(t, entries, 1)
	assert.Equal(t, KindFolder, entries[0].Kind)
	assert.Equal(t, "report/", entries[0].FullPath)
}

func TestChildren_InputOrderPreserved(t *testing.T) {
	// Output follows input record order, never alphabetical.
	recs := records("zebra.txt", "alpha/x.txt", "mid.txt")

	entries := Children(recs, "")
	require.Len(t, entries, 3)
	assert.Equal(t, "zebra.txt", entries[0].Name)
	assert.Equal(t, "alpha", entries[1].Name)
	assert.Equal(t, "mid.txt", entries[2].Name)
}

func TestChildren_Properties(t *testing.T) {
	recs := records(
		"a/b.txt", "a/c/d.txt", "a/c/e.txt", "f.txt", "g/h/i/j.bin",
		"a/b.txt", // duplicate key exercises the dedup path too
	)
	paths := []string{"", "a/", "a/c/", "g/", "g/h/", "none/"}

	for _, path := range paths {
		t.Run("path "+path, func(t *testing.T) {
			entries := Children(recs, path)

			names := make(map[string]struct{})
			for _, e := range entries {
				// Every fullPath starts with the path.
				assert.True(t, strings.HasPrefix(e.FullPath, path))

				// Folder paths end with a slash; file paths equal a record key.
				if e.Kind == KindFolder {
					assert.True(t, strings.HasSuffix(e.FullPath, "/"))
					assert.Nil(t, e.Object)
				} else {
					require.NotNil(t, e.Object)
					assert.Equal(t, e.Object.Key, e.FullPath)
				}

				// Names are pairwise distinct.
				_, dup := names[e.Name]
				assert.False(t, dup, "duplicate name %q", e.Name)
				names[e.Name] = struct{}{}
			}

			// Idempotence: identical inputs yield identical ordered output.
			assert.Equal(t, entries, Children(recs, path))
		})
	}
}

func TestEntry_IsFolder(t *testing.T) {
	assert.True(t, Entry{Kind: KindFolder}.IsFolder())
	assert.False(t, Entry{Kind: KindFile}.IsFolder())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "file", KindFile.String())
}
