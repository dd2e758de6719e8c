package browse

import "strings"

// Crumb is one breadcrumb segment: a label and the cumulative path it
// navigates to.
type Crumb struct {
	// Label is the human-readable segment name.
	Label string

	// Path is the slash-terminated prefix up to and including this segment.
	Path string
}

// Navigator holds the single piece of view state: the current path.
//
// The path is either empty (root) or a slash-terminated prefix. Navigation
// never validates that the prefix exists in the data; a nonexistent path
// simply yields an empty listing. There is no history stack.
type Navigator struct {
	current string
}

// NewNavigator creates a navigator positioned at the root.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// CurrentPath returns the current path prefix.
func (n *Navigator) CurrentPath() string {
	return n.current
}

// NavigateToRoot moves to the root.
func (n *Navigator) NavigateToRoot() {
	n.current = ""
}

// NavigateTo moves to the given slash-terminated prefix verbatim.
func (n *Navigator) NavigateTo(path string) {
	n.current = path
}

// Breadcrumbs derives the segment trail for the current path: labels from
// splitting on "/" with empty segments discarded, paths as the running
// slash-terminated prefixes.
func (n *Navigator) Breadcrumbs() []Crumb {
	var crumbs []Crumb
	acc := ""
	for _, seg := range strings.Split(n.current, "/") {
		if seg == "" {
			continue
		}
		acc += seg + "/"
		crumbs = append(crumbs, Crumb{Label: seg, Path: acc})
	}
	return crumbs
}
