// Package browse derives the folder-like view from a flat listing.
//
// Object keys are slash-delimited but flat: folders do not exist in the
// backing store. Children synthesizes them per path level by grouping the
// keys that share a prefix, so navigation is pure recomputation over the
// session snapshot with no further fetches.
package browse

import (
	"strings"

	"github.com/3leaps/nimbusview/pkg/source"
)

// Kind distinguishes synthetic folders from backed files.
type Kind string

const (
	// KindFolder is a synthetic grouping entry with no backing object.
	KindFolder Kind = "folder"

	// KindFile is an entry backed by exactly one listing record.
	KindFile Kind = "file"
)

// String returns the string representation of the entry kind.
func (k Kind) String() string {
	return string(k)
}

// Entry is one row of the view at a path. Derived, never stored.
type Entry struct {
	// Kind is folder or file.
	Kind Kind

	// Name is the display name, the first remainder segment of the key.
	Name string

	// FullPath is the slash-terminated folder prefix, or the file's full key.
	FullPath string

	// Object backs file entries; nil for folders.
	Object *source.Object
}

// IsFolder reports whether the entry is a synthetic folder.
func (e Entry) IsFolder() bool {
	return e.Kind == KindFolder
}

// Children computes the direct children visible at path.
//
// path is either empty (root) or a slash-terminated prefix. Records whose
// key does not start with path are ignored; the rest contribute one entry
// named after the first segment of the key remainder. A remainder with
// further segments becomes a folder, otherwise the record itself is the
// file entry. Duplicate names keep the first occurrence in input order,
// which is also what collapses the many records under one folder into a
// single folder entry. Output order follows input order; nothing sorts.
//
// A key exactly equal to path yields an empty name and contributes
// nothing. An unmatched path yields an empty result, not an error.
func Children(records []source.Object, path string) []Entry {
	var entries []Entry
	seen := make(map[string]struct{})

	for i := range records {
		key := records[i].Key
		if !strings.HasPrefix(key, path) {
			continue
		}

		remainder := key[len(path):]
		name, _, nested := strings.Cut(remainder, "/")
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if nested {
			entries = append(entries, Entry{
				Kind:     KindFolder,
				Name:     name,
				FullPath: path + name + "/",
			})
			continue
		}
		entries = append(entries, Entry{
			Kind:     KindFile,
			Name:     name,
			FullPath: key,
			Object:   &records[i],
		})
	}

	return entries
}
