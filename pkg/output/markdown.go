package output

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for the terminal. Without color the notty style
// is used so the result stays readable when piped.
func RenderMarkdown(md string, width int, color bool) (string, error) {
	options := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if color {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle("notty"))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
