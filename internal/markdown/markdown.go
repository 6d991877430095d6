// Package markdown renders the small markdown snippets used for cards, help
// and error screens.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"
)

// Renderer caches a glamour renderer per wrap width.
type Renderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// Render renders md wrapped to width columns. A width of zero disables
// wrapping.
func (r *Renderer) Render(md string, width int) (string, error) {
	if width < 0 {
		width = 0
	}
	if r.renderer == nil || r.width != width {
		renderer, err := newRenderer(width)
		if err != nil {
			return "", err
		}
		r.renderer = renderer
		r.width = width
	}
	out, err := r.renderer.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

func newRenderer(width int) (*glamour.TermRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(styles.TokyoNightStyle)}
	opts = append(opts, glamour.WithWordWrap(width))
	return glamour.NewTermRenderer(opts...)
}

// Escape backslash-escapes characters that would be read as markdown syntax
// in a file name or error message.
func Escape(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`, "`", "\\`", `*`, `\*`, `_`, `\_`,
		`[`, `\[`, `]`, `\]`, `#`, `\#`, `<`, `\<`, `>`, `\>`,
	)
	return r.Replace(s)
}
