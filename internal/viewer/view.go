package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/kyaoi/pdfview/internal/document"
	"github.com/kyaoi/pdfview/internal/markdown"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Background(lipgloss.Color("#283457")).
			Padding(0, 1)
	pageStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3b4261")).
			Foreground(lipgloss.Color("#c0caf5"))
	pageLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	controlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	disabledStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b4261"))
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9b1d6"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
)

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.headerView(), m.bodyView(), m.controlsView(), m.statusView()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView() string {
	name := "(no file)"
	if m.file != nil {
		name = m.file.Name
	}
	badge := badgeStyle.Render(string(m.state.Mode))
	room := m.width - lipgloss.Width(badge) - headerStyle.GetHorizontalFrameSize()
	if room > 0 {
		name = truncate.StringWithTail(name, uint(room), "…")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, headerStyle.Render(name), badge)
}

func (m *Model) bodyView() string {
	height := max(m.height-chromeHeight, 1)
	var body string
	switch {
	case m.loadErr != nil:
		body = m.errorView()
	case m.doc == nil:
		name := ""
		if m.file != nil {
			name = m.file.Name
		}
		body = fmt.Sprintf("%s Loading %s…", m.spinner.View(), name)
	default:
		return m.pageVP.View()
	}
	if m.width > 0 {
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, body)
	}
	return body
}

func (m *Model) errorView() string {
	name := "document"
	if m.file != nil {
		name = m.file.Name
	}
	md := fmt.Sprintf("## Could not open %s\n\n%s\n\nPress **r** to retry or **esc** to close the viewer.",
		markdown.Escape(name), markdown.Escape(m.loadErr.Error()))
	width := min(max(m.width-4, 20), 80)
	out, err := m.markdown.Render(md, width)
	if err != nil {
		return errorStyle.Render(wordwrap.String(fmt.Sprintf("Could not open %s: %v\nr retry · esc close", name, m.loadErr), width))
	}
	return out
}

func (m *Model) controlsView() string {
	prev := disabledStyle.Render("◀ prev")
	if m.state.CanPrev() {
		prev = controlStyle.Render("◀ prev")
	}
	next := disabledStyle.Render("next ▶")
	if m.state.CanNext() {
		next = controlStyle.Render("next ▶")
	}
	total := "–"
	if m.state.Total > 0 {
		total = fmt.Sprintf("%d", m.state.Total)
	}
	parts := []string{
		prev,
		fmt.Sprintf("page %d / %s", m.state.Page, total),
		next,
		fmt.Sprintf("zoom %d%%", m.state.ZoomPercent()),
		hintStyle.Render("+/- zoom · m mode · : go to · d download · P print · esc close"),
	}
	line := strings.Join(parts, "  ")
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return line
}

func (m *Model) statusView() string {
	if m.gotoActive {
		return m.gotoInput.View()
	}
	text := m.status
	if m.busy[jobKindPrint] || m.busy[jobKindDownload] {
		text = m.spinner.View() + " " + text
	}
	if m.width > 0 {
		text = truncate.StringWithTail(text, uint(m.width), "…")
	}
	if m.statusErr {
		return errorStyle.Render(text)
	}
	return statusStyle.Render(text)
}

// renderPages renders every page the state asks for and returns the joined
// content plus the first line of each page within it.
func (m *Model) renderPages() (string, map[int]int) {
	offsets := map[int]int{}
	var blocks []string
	line := 0
	for n := range m.state.Pages() {
		page, ok := m.doc.Page(n)
		if !ok {
			continue
		}
		block := m.renderPage(page)
		offsets[n] = line
		blocks = append(blocks, block)
		line += lipgloss.Height(block) + 1
	}
	return strings.Join(blocks, "\n\n"), offsets
}

func (m *Model) renderPage(page document.Page) string {
	lines := document.Render(page, m.state.Zoom, m.opts.Config.BaseColumns)
	framed := pageStyle.Render(strings.Join(lines, "\n"))
	label := pageLabelStyle.Render(fmt.Sprintf("— %d / %d —", page.Number, m.state.Total))
	block := lipgloss.JoinVertical(lipgloss.Center, framed, label)
	if m.pageVP.Width > lipgloss.Width(block) {
		block = lipgloss.PlaceHorizontal(m.pageVP.Width, lipgloss.Center, block)
	}
	return block
}
