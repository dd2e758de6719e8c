package handlers

import (
	"net/http"
	"time"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
	"github.com/3leaps/nimbusview/pkg/browse"
	"github.com/3leaps/nimbusview/pkg/cdn"
	"github.com/3leaps/nimbusview/pkg/format"
	"github.com/3leaps/nimbusview/pkg/match"
	"github.com/3leaps/nimbusview/pkg/snapshot"
	"github.com/3leaps/nimbusview/pkg/source"
)

// APIHandler serves the JSON API over the session snapshot.
type APIHandler struct {
	store *snapshot.Store
	links *cdn.Links
}

// NewAPIHandler wires the JSON API. links may be nil, in which case file
// entries carry no url field.
func NewAPIHandler(store *snapshot.Store, links *cdn.Links) *APIHandler {
	return &APIHandler{store: store, links: links}
}

// BreadcrumbEntry is one breadcrumb in a listing response.
type BreadcrumbEntry struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ListingEntry is one child entry in a listing response. Size and
// last_modified are present on files only.
type ListingEntry struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	FullPath     string `json:"full_path"`
	Size         *int64 `json:"size,omitempty"`
	SizeHuman    string `json:"size_human,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	URL          string `json:"url,omitempty"`
}

// ListingResponse is the body of /api/v1/listing.
type ListingResponse struct {
	Path        string            `json:"path"`
	State       string            `json:"state"`
	Breadcrumbs []BreadcrumbEntry `json:"breadcrumbs"`
	Entries     []ListingEntry    `json:"entries"`
}

// Listing serves the children visible at ?path=, optionally narrowed by
// repeatable ?include= and ?exclude= glob parameters.
func (a *APIHandler) Listing(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("no listing source configured"))
		return
	}

	q := r.URL.Query()
	path := normalizeViewPath(q.Get("path"))

	m, err := match.New(match.Config{Includes: q["include"], Excludes: q["exclude"]})
	if err != nil {
		respondWithError(w, r, apperrors.NewBadRequestError(err.Error()))
		return
	}

	records := a.store.Records()
	if !m.Empty() {
		filtered := make([]source.Object, 0, len(records))
		for _, obj := range records {
			if m.Match(obj.Key) {
				filtered = append(filtered, obj)
			}
		}
		records = filtered
	}

	writeJSON(w, http.StatusOK, BuildListingResponse(records, a.links, path, a.store.State().String()))
}

// BuildListingResponse assembles the listing payload for the children
// visible at path over records. The browse command emits the same shape
// for --json output.
func BuildListingResponse(records []source.Object, links *cdn.Links, path, state string) ListingResponse {
	nav := browse.NewNavigator()
	nav.NavigateTo(path)

	resp := ListingResponse{
		Path:        path,
		State:       state,
		Breadcrumbs: make([]BreadcrumbEntry, 0),
		Entries:     make([]ListingEntry, 0),
	}
	for _, c := range nav.Breadcrumbs() {
		resp.Breadcrumbs = append(resp.Breadcrumbs, BreadcrumbEntry{Label: c.Label, Path: c.Path})
	}
	for _, e := range browse.Children(records, path) {
		resp.Entries = append(resp.Entries, listingEntryFor(e, links))
	}
	return resp
}

func listingEntryFor(e browse.Entry, links *cdn.Links) ListingEntry {
	entry := ListingEntry{
		Kind:     e.Kind.String(),
		Name:     e.Name,
		FullPath: e.FullPath,
	}
	if e.IsFolder() {
		return entry
	}

	size := e.Object.Size
	entry.Size = &size
	entry.SizeHuman = format.Size(size)
	if !e.Object.LastModified.IsZero() {
		entry.LastModified = e.Object.LastModified.UTC().Format(time.RFC3339)
	}
	if links != nil {
		entry.URL = links.ObjectURL(e.FullPath)
	}
	return entry
}

// SnapshotResponse is the body of /api/v1/snapshot.
type SnapshotResponse struct {
	State    string `json:"state"`
	Objects  int    `json:"objects"`
	Bytes    int64  `json:"bytes"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Source   string `json:"source"`
}

// Snapshot serves the load state of the session snapshot.
func (a *APIHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if a.store == nil {
		respondWithError(w, r, apperrors.NewServiceUnavailableError("no listing source configured"))
		return
	}

	resp := SnapshotResponse{
		State:   a.store.State().String(),
		Objects: a.store.Len(),
		Bytes:   a.store.Bytes(),
		Source:  a.store.Source(),
	}
	if at := a.store.LoadedAt(); !at.IsZero() {
		resp.LoadedAt = at.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}
