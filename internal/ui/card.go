package ui

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/kyaoi/pdfview/internal/markdown"
)

func (m *Model) cardMarkdown() string {
	if m.held == nil {
		where := "the tree"
		if m.displayRoot != "" {
			where = "`" + m.displayRoot + "/`"
		}
		return fmt.Sprintf("## No PDF selected\n\nPick a PDF in %s with **enter**.\n\nPress **?** for help.", where)
	}
	f := m.held
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", markdown.Escape(f.Name))
	fmt.Fprintf(&b, "- **Size:** %s\n", formatSize(f.Size))
	if !f.ModTime.IsZero() {
		fmt.Fprintf(&b, "- **Modified:** %s\n", f.ModTime.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "- **Path:** %s\n\n", markdown.Escape(f.Path))
	b.WriteString("Press **enter** to open the viewer.")
	return b.String()
}

func (m *Model) renderCard() {
	width := max(m.cardVP.Width-m.cardVP.Style.GetHorizontalFrameSize(), 0)
	md := m.cardMarkdown()
	out, err := m.markdown.Render(md, width)
	if err != nil {
		out = wordwrap.String(md, width)
	}
	m.cardVP.SetContent(out)
}
