// Package format holds the pure presentation helpers: byte sizes,
// modification times, and file-type glyphs. All functions are total;
// unrecognized input falls back to a default instead of erroring.
package format

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Size formats bytes as human-readable size.
func Size(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
		TB = 1024 * GB
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// modTimeLayout renders timestamps in the local timezone.
const modTimeLayout = "2006-01-02 15:04:05"

// ModTime formats a modification time for display.
// The zero time renders as an empty string.
func ModTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(modTimeLayout)
}

// Glyphs for entries without a more specific match.
const (
	FolderIcon      = "📁"
	DefaultFileIcon = "📄"
)

// icons maps lowercase file extensions to display glyphs.
var icons = map[string]string{
	// documents
	"pdf": "📕", "doc": "📝", "docx": "📝", "txt": "📄", "md": "📄", "rtf": "📝",
	// spreadsheets and data
	"csv": "📊", "tsv": "📊", "xls": "📊", "xlsx": "📊", "parquet": "📊",
	"json": "🧾", "yaml": "🧾", "yml": "🧾", "xml": "🧾", "toml": "🧾",
	// images
	"png": "🖼️", "jpg": "🖼️", "jpeg": "🖼️", "gif": "🖼️", "svg": "🖼️", "webp": "🖼️", "bmp": "🖼️",
	// audio
	"mp3": "🎵", "wav": "🎵", "flac": "🎵", "ogg": "🎵", "m4a": "🎵",
	// video
	"mp4": "🎬", "mov": "🎬", "avi": "🎬", "mkv": "🎬", "webm": "🎬",
	// archives
	"zip": "🗜️", "tar": "🗜️", "gz": "🗜️", "tgz": "🗜️", "bz2": "🗜️", "rar": "🗜️", "7z": "🗜️",
	// code
	"go": "👨‍💻", "py": "👨‍💻", "js": "👨‍💻", "ts": "👨‍💻", "rb": "👨‍💻", "rs": "👨‍💻",
	"java": "👨‍💻", "c": "👨‍💻", "h": "👨‍💻", "cpp": "👨‍💻", "sh": "👨‍💻", "sql": "👨‍💻",
	// web
	"html": "🌐", "htm": "🌐", "css": "🎨",
}

// Icon returns the display glyph for a file name based on its extension.
// Unrecognized or missing extensions fall back to the generic file glyph.
func Icon(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if icon, ok := icons[ext]; ok {
		return icon
	}
	return DefaultFileIcon
}
