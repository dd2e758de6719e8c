package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Dir walks a local directory and presents its files as a flat listing.
//
// Keys are slash-delimited paths relative to the base directory, emitted
// in lexicographic order. Intended for development and tests.
type Dir struct {
	baseDir string
	prefix  string
}

// Ensure Dir implements the interface.
var _ Source = (*Dir)(nil)

// DirConfig configures a local directory source.
type DirConfig struct {
	// BaseDir is the directory whose files become the listing (required).
	BaseDir string

	// Prefix limits the listing to keys under this slash-delimited prefix.
	Prefix string
}

// Validate checks that required configuration is present.
func (c DirConfig) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

// NewDir creates a local directory source with the given configuration.
func NewDir(cfg DirConfig) (*Dir, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &SourceError{Op: "New", Kind: KindFile, Target: cfg.BaseDir, Err: err}
	}
	return &Dir{
		baseDir: filepath.Clean(cfg.BaseDir),
		prefix:  strings.TrimPrefix(cfg.Prefix, "/"),
	}, nil
}

// List walks the directory and returns every file as an Object.
func (d *Dir) List(ctx context.Context) ([]Object, error) {
	root, err := d.fullPath(d.prefix)
	if err != nil {
		return nil, d.wrapError("List", err)
	}
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return []Object{}, nil
		}
		return nil, d.wrapError("List", err)
	}

	var keys []string
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.baseDir, path)
		if err != nil {
			return nil
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, d.wrapError("List", walkErr)
	}
	sort.Strings(keys)

	objects := make([]Object, 0, len(keys))
	for _, k := range keys {
		full, err := d.fullPath(k)
		if err != nil {
			continue
		}
		st, err := os.Stat(full)
		if err != nil || st.IsDir() {
			continue
		}
		objects = append(objects, Object{Key: k, Size: st.Size(), LastModified: st.ModTime()})
	}
	return objects, nil
}

// String returns the directory in URI form.
func (d *Dir) String() string {
	if d.prefix != "" {
		return "file://" + d.baseDir + "/" + d.prefix
	}
	return "file://" + d.baseDir
}

func (d *Dir) fullPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "/")
	// Prevent path traversal. The key is cleaned as a relative path so
	// leading .. segments survive cleaning and can be rejected.
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	if clean == "." {
		clean = ""
	}
	return filepath.Join(d.baseDir, filepath.FromSlash(clean)), nil
}

func (d *Dir) wrapError(op string, err error) error {
	wrapped := &SourceError{Op: op, Kind: KindFile, Target: d.baseDir, Err: err}
	if err == nil {
		wrapped.Err = fmt.Errorf("unknown error")
		return wrapped
	}
	// Normalize common filesystem errors to sentinels.
	if os.IsNotExist(err) {
		wrapped.Err = ErrNotFound
	}
	if os.IsPermission(err) {
		wrapped.Err = ErrAccessDenied
	}
	return wrapped
}
