package webui

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/3leaps/nimbusview/pkg/format"
)

// EnvWebUIDir overrides the embedded assets with a directory on disk.
// The directory must mirror the embedded layout (templates/, static/).
// Intended for template development; unset means embedded assets.
const EnvWebUIDir = "NIMBUSVIEW_WEBUI_DIR"

// CrumbLink is one breadcrumb rendered in the page header.
type CrumbLink struct {
	Label string
	Href  string
}

// Row is one entry row of the browse table. Folder rows navigate within
// the view; file rows link out to the content-delivery URL.
type Row struct {
	IsFolder bool
	Name     string
	Href     string
	Size     int64
	Modified time.Time
}

// BrowsePage is the template data for the browse page.
type BrowsePage struct {
	Title   string
	Path    string
	Loading bool
	Crumbs  []CrumbLink
	Rows    []Row
	Footer  string
}

// Renderer executes the browse template. Templates are parsed once at
// construction.
type Renderer struct {
	browse *template.Template
}

// NewRenderer parses the browse template from the embedded assets, or from
// the NIMBUSVIEW_WEBUI_DIR directory when set.
func NewRenderer() (*Renderer, error) {
	fsys, err := assetFS()
	if err != nil {
		return nil, err
	}

	tpl, err := template.New("browse.html").Funcs(funcMap()).ParseFS(fsys, "templates/browse.html")
	if err != nil {
		return nil, fmt.Errorf("webui: parse templates: %w", err)
	}
	return &Renderer{browse: tpl}, nil
}

// RenderBrowse writes the browse page for the given data.
func (r *Renderer) RenderBrowse(w io.Writer, page BrowsePage) error {
	if err := r.browse.Execute(w, page); err != nil {
		return fmt.Errorf("webui: render browse page: %w", err)
	}
	return nil
}

// StaticHandler serves the stylesheet assets. Mount under /static/ with the
// prefix stripped.
func StaticHandler() (http.Handler, error) {
	fsys, err := assetFS()
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(fsys, "static")
	if err != nil {
		return nil, fmt.Errorf("webui: static assets: %w", err)
	}
	return http.FileServer(http.FS(sub)), nil
}

func assetFS() (fs.FS, error) {
	if dir := os.Getenv(EnvWebUIDir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("webui: %s: %w", EnvWebUIDir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("webui: %s is not a directory: %s", EnvWebUIDir, dir)
		}
		return os.DirFS(dir), nil
	}
	return Assets, nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"size":       format.Size,
		"modtime":    format.ModTime,
		"icon":       format.Icon,
		"folderIcon": func() string { return format.FolderIcon },
	}
}
