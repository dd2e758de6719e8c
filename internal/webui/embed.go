// Package webui provides the embedded templates and static assets for the
// browse page, plus the renderer that executes them.
package webui

import "embed"

//go:embed templates static
var Assets embed.FS
