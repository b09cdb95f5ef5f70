// Package output renders a built scene as a terminal table, JSON, or
// Markdown.
package output

import (
	"io"

	"github.com/orrery-cli/orrery/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Valid reports whether f names a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return true
	}
	return false
}

// Formatter defines the interface for scene renderers
type Formatter interface {
	Format(scene *model.Scene, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}
