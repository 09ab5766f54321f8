package topics

import (
	"path"

	"github.com/jtele2/csync/pkg/output"
)

// Renderer defines the interface for rendering topic content
type Renderer interface {
	// Render takes raw content and the topic file name and returns
	// formatted content for terminal display
	Render(content, name string) string
}

// PlainRenderer is the default renderer that returns content as-is
type PlainRenderer struct{}

// Render returns the content unchanged
func (PlainRenderer) Render(content, _ string) string {
	return content
}

// MarkdownRenderer renders .md topics through glamour
type MarkdownRenderer struct {
	Width int
	Color bool
}

// Render converts markdown to terminal output. Other files and render
// failures fall back to the raw content.
func (r MarkdownRenderer) Render(content, name string) string {
	if path.Ext(name) != ".md" {
		return content
	}
	width := r.Width
	if width <= 0 {
		width = 80
	}
	rendered, err := output.RenderMarkdown(content, width, r.Color)
	if err != nil {
		return content
	}
	return rendered
}
