package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
	"github.com/3leaps/nimbusview/internal/webui"
	"github.com/3leaps/nimbusview/pkg/browse"
	"github.com/3leaps/nimbusview/pkg/cdn"
	"github.com/3leaps/nimbusview/pkg/format"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/snapshot"
)

// BrowseHandler renders the HTML view over the session snapshot.
//
// The path comes from the route wildcard. A pending snapshot renders the
// loading page; a failed snapshot or an unmatched path renders the empty
// listing. Navigation is recomputation, never a fetch.
type BrowseHandler struct {
	store    *snapshot.Store
	links    *cdn.Links
	renderer *webui.Renderer
	title    string
}

// NewBrowseHandler wires the browse page. links may be nil, in which case
// file rows render without an outbound link.
func NewBrowseHandler(store *snapshot.Store, links *cdn.Links, renderer *webui.Renderer, title string) *BrowseHandler {
	if title == "" {
		title = "nimbusview"
	}
	return &BrowseHandler{store: store, links: links, renderer: renderer, title: title}
}

// ServeHTTP renders the page at the path carried by the route wildcard.
func (h *BrowseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.store == nil || h.renderer == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("no listing source configured"))
		return
	}

	path := normalizeViewPath(chi.URLParam(r, "*"))

	nav := browse.NewNavigator()
	nav.NavigateTo(path)

	page := webui.BrowsePage{
		Title:   h.title,
		Path:    path,
		Loading: h.store.State() == snapshot.StatePending,
		Crumbs:  crumbLinks(nav.Breadcrumbs()),
	}

	if !page.Loading {
		entries := browse.Children(h.store.Records(), path)
		page.Rows = h.rows(entries)
		page.Footer = h.footer()
	}

	var buf bytes.Buffer
	if err := h.renderer.RenderBrowse(&buf, page); err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "failed to render page"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *BrowseHandler) rows(entries []browse.Entry) []webui.Row {
	rows := make([]webui.Row, 0, len(entries))
	for _, e := range entries {
		if e.IsFolder() {
			rows = append(rows, webui.Row{
				IsFolder: true,
				Name:     e.Name,
				Href:     browseHref(e.FullPath),
			})
			continue
		}
		row := webui.Row{
			Name:     e.Name,
			Size:     e.Object.Size,
			Modified: e.Object.LastModified,
		}
		if h.links != nil {
			row.Href = h.links.ObjectURL(e.FullPath)
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *BrowseHandler) footer() string {
	if h.store.State() != snapshot.StateLoaded {
		return ""
	}
	return fmt.Sprintf("%d objects, %s total, loaded %s",
		h.store.Len(), format.Size(h.store.Bytes()), format.ModTime(h.store.LoadedAt()))
}

// normalizeViewPath canonicalizes the request path parameter: no leading
// slash, empty for root, otherwise slash-terminated.
func normalizeViewPath(raw string) string {
	return match.EnsureTrailingSlash(strings.TrimPrefix(raw, "/"))
}

// browseHref builds the in-view link for a slash-terminated folder prefix,
// escaping each segment.
func browseHref(path string) string {
	if path == "" {
		return "/browse/"
	}
	segs := strings.Split(strings.TrimSuffix(path, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "/browse/" + strings.Join(segs, "/") + "/"
}

// crumbLinks converts navigator breadcrumbs into rendered links.
func crumbLinks(crumbs []browse.Crumb) []webui.CrumbLink {
	links := make([]webui.CrumbLink, len(crumbs))
	for i, c := range crumbs {
		links[i] = webui.CrumbLink{Label: c.Label, Href: browseHref(c.Path)}
	}
	return links
}
