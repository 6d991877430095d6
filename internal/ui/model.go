package ui

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/reflow/truncate"

	"github.com/kyaoi/pdfview/internal/markdown"
	"github.com/kyaoi/pdfview/internal/tree"
	"github.com/kyaoi/pdfview/internal/viewer"
)

const (
	statusHeight      = 1
	minContentWidth   = 20
	minTreePanelWidth = 18
	defaultTreeWidth  = 28
)

var (
	treeBlurBorderColor  = lipgloss.Color("#3b4261")
	treeFocusBorderColor = lipgloss.Color("#7aa2f7")
	treeLineStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a9b1d6"))
	treeHeldStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	treeSelectedActive   = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1b26")).
				Background(lipgloss.Color("#7aa2f7")).
				Bold(true)
	treeSelectedInactive = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0caf5")).
				Background(lipgloss.Color("#283457"))
	helpBoxStyle = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Background(lipgloss.Color("#1f2335"))
	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#a9b1d6")).
			Background(lipgloss.Color("#1f2335"))
	statusErrStyle = statusBarStyle.Foreground(lipgloss.Color("#ff6b6b"))
)

// Model is the shell: a file picker, a summary card for the held file and,
// once opened, the viewer on top.
type Model struct {
	opts viewer.Options

	cardVP             viewport.Model
	treeVP             viewport.Model
	markdown           markdown.Renderer
	headerPath         string
	treeVisible        bool
	treePreferredWidth int
	treeContentWidth   int
	treeFocus          bool
	showHelp           bool
	pendingKey         string
	width              int
	height             int
	status             string
	statusErr          bool

	treeRoot      *tree.Node
	flatTree      []treeLine
	treeSelection int
	rootDir       string
	displayRoot   string

	held   *viewer.File
	open   bool
	viewer *viewer.Model

	watch       bool
	watcher     *fsnotify.Watcher
	watchDir    string
	watchedFile string
	watchChan   chan tea.Msg
	waiting     bool
}

// NewModel constructs the shell with the provided initial state. opts are
// handed to every viewer the shell mounts.
func NewModel(state State, opts viewer.Options) *Model {
	cardVP := viewport.New(0, 0)
	cardVP.Style = lipgloss.NewStyle().Padding(0, 1)

	treeVP := viewport.New(0, 0)
	treeVP.Style = treePanelStyle(treeBlurBorderColor)
	treeVP.MouseWheelEnabled = false

	m := &Model{
		opts:               opts,
		cardVP:             cardVP,
		treeVP:             treeVP,
		headerPath:         state.HeaderPath,
		treeVisible:        state.TreeVisible && state.TreeRoot != nil,
		treePreferredWidth: state.TreePreferredWidth,
		treeRoot:           state.TreeRoot,
		rootDir:            state.RootDir,
		displayRoot:        state.DisplayRoot,
		held:               state.Held,
		watch:              state.Watch,
	}

	if m.treeRoot != nil {
		m.refreshTreeViewWithSelection(state.TreeSelectionPath)
	}
	m.updateTreePanelStyle()

	if state.FocusTree {
		m.focusTree()
	}
	return m
}

// Held returns the file currently held by the shell, if any.
func (m *Model) Held() *viewer.File {
	return m.held
}

// IsOpen reports whether the viewer is showing.
func (m *Model) IsOpen() bool {
	return m.open
}

// Viewer returns the mounted viewer, which may exist while closed.
func (m *Model) Viewer() *viewer.Model {
	return m.viewer
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.held != nil {
		return m.startWatching(m.held.Path)
	}
	return nil
}

// SelectFiles holds the first of files. An empty selection is ignored and the
// viewer is never opened here.
func (m *Model) SelectFiles(files []*viewer.File) tea.Cmd {
	if len(files) == 0 || files[0] == nil {
		return nil
	}
	m.held = files[0]
	log.Printf("[shell] selected %s (%d bytes)", m.held.Path, m.held.Size)
	m.setStatus(fmt.Sprintf("Selected %s. Press enter to open.", m.held.Name))
	m.renderCard()
	m.updateTreeContent(m.treeContentWidth)
	return m.startWatching(m.held.Path)
}

// OpenViewer shows the viewer for the held file. A viewer already mounted for
// the same file is reused as is.
func (m *Model) OpenViewer() tea.Cmd {
	if m.held == nil {
		m.setStatus("Select a PDF first.")
		return nil
	}
	m.open = true
	if m.viewer != nil && sameFile(m.viewer.File(), m.held) {
		m.viewer.Resize(m.width, m.height)
		return nil
	}
	if m.viewer != nil {
		m.viewer.Dispose()
	}
	log.Printf("[shell] mounting viewer for %s", m.held.Path)
	m.viewer = viewer.New(m.held, m.opts)
	m.viewer.Resize(m.width, m.height)
	return m.viewer.Init()
}

// CloseViewer hides the viewer. The held file stays.
func (m *Model) CloseViewer() {
	m.open = false
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fileEventMsg:
		return m, m.handleFileEvent(msg)
	case fileWatchErrMsg:
		m.setError(msg.err)
		return m, m.waitForFileEvent()
	case viewer.CloseMsg:
		m.CloseViewer()
		return m, nil
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		if m.viewer != nil {
			m.viewer.Resize(msg.Width, msg.Height)
		}
		return m, nil
	case tea.KeyMsg:
		if m.open && m.viewer != nil {
			_, cmd := m.viewer.Update(msg)
			return m, cmd
		}
		return m, m.handleKey(msg)
	case tea.MouseMsg:
		if m.open && m.viewer != nil {
			_, cmd := m.viewer.Update(msg)
			return m, cmd
		}
		var cmd tea.Cmd
		m.cardVP, cmd = m.cardVP.Update(msg)
		return m, cmd
	}

	if m.viewer != nil {
		_, cmd := m.viewer.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key != "g" {
		m.pendingKey = ""
	}

	if m.showHelp {
		switch key {
		case "q", "?", "esc":
			m.showHelp = false
		case "ctrl+c":
			return tea.Quit
		}
		return nil
	}

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "?":
		m.showHelp = true
		return nil
	case "ctrl+h":
		m.focusTree()
		return nil
	case "ctrl+l":
		m.blurTree()
		return nil
	case "tab":
		if m.treeFocus {
			m.blurTree()
		} else {
			m.focusTree()
		}
		return nil
	case "t":
		if m.treeRoot != nil {
			m.treeVisible = !m.treeVisible
			if !m.treeVisible {
				m.blurTree()
			}
			m.resize(m.width, m.height)
		}
		return nil
	case "o":
		return m.OpenViewer()
	}

	if m.treeFocus && m.treeVisible {
		return m.handleTreeKey(key)
	}

	switch key {
	case "enter":
		return m.OpenViewer()
	case "j", "down":
		m.cardVP.ScrollDown(1)
	case "k", "up":
		m.cardVP.ScrollUp(1)
	}
	return nil
}

func (m *Model) handleTreeKey(key string) tea.Cmd {
	switch key {
	case "j", "down":
		m.moveTreeSelection(1)
	case "k", "up":
		m.moveTreeSelection(-1)
	case "ctrl+d":
		m.moveTreeSelection(max(1, m.treeVP.Height/2))
	case "ctrl+u":
		m.moveTreeSelection(-max(1, m.treeVP.Height/2))
	case "enter", "l", "right":
		return m.activateTreeEntry()
	case "h", "left":
		m.closeOrAscend()
	case "g":
		if m.pendingKey == "g" {
			m.pendingKey = ""
			m.moveTreeSelection(-len(m.flatTree))
		} else {
			m.pendingKey = "g"
		}
	case "G":
		m.moveTreeSelection(len(m.flatTree))
	case "R":
		m.reloadTree()
		m.setStatus("Rescanned " + m.displayRoot + "/")
	}
	return nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.open && m.viewer != nil {
		return m.viewer.View()
	}

	if m.showHelp {
		helpOverlay := helpBoxStyle.Render(helpText)
		if m.width > 0 && m.height > 0 {
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, helpOverlay)
		}
		return helpOverlay
	}

	body := m.cardVP.View()
	if m.treeVisible {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.treeVP.View(), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView())
}

var helpText = strings.Join([]string{
	"Help (? or esc to close)",
	"ctrl+h / ctrl+l / tab : focus tree or card",
	"j / k                 : move selection or scroll",
	"enter / l             : select PDF or expand folder",
	"h                     : collapse folder",
	"gg / G                : first / last entry",
	"R                     : rescan folder",
	"enter / o             : open the viewer for the selected PDF",
	"t                     : toggle the tree",
	"q / ctrl+c            : quit",
	"",
	"In the viewer",
	"n / l / → / pgdown / space : next page",
	"p / h / ← / pgup           : previous page",
	"gg / home , G / end        : first / last page",
	":                          : go to page",
	"j / k , ctrl+d / ctrl+u    : scroll line / half page",
	"H / L                      : scroll left / right",
	"+ / - / 0                  : zoom in / out / reset",
	"m                          : paginated or continuous",
	"d / P                      : download / print",
	"r                          : retry after a load error",
	"esc / q                    : close the viewer",
}, "\n")

func (m *Model) statusView() string {
	text := m.status
	if text == "" {
		text = m.headerPath
	}
	width := m.width - statusBarStyle.GetHorizontalFrameSize()
	if width > 0 {
		text = truncate.StringWithTail(text, uint(width), "…")
	}
	style := statusBarStyle
	if m.statusErr {
		style = statusErrStyle
	}
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render(text)
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(err error) {
	log.Printf("[shell] %v", err)
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= statusHeight {
		return
	}
	m.width = width
	m.height = height

	treeWidth := m.treeWidth(width)
	contentWidth := width - treeWidth
	if m.treeVisible && treeWidth > 0 {
		contentWidth--
	}
	contentWidth = max(contentWidth, minContentWidth)

	contentHeight := max(height-statusHeight, 1)
	m.cardVP.Width = contentWidth
	m.cardVP.Height = contentHeight
	m.renderCard()

	if m.treeVisible && treeWidth > 0 {
		m.treeVP.Width = treeWidth
		m.treeVP.Height = contentHeight
		m.ensureSelectionVisible()
	} else {
		m.treeVP.Width = 0
		m.treeVP.Height = contentHeight
	}
}

func (m *Model) treeWidth(totalWidth int) int {
	if !m.treeVisible {
		return 0
	}
	preferred := m.treePreferredWidth
	if preferred <= 0 {
		preferred = defaultTreeWidth
	}

	frame := m.treeVP.Style.GetHorizontalFrameSize()
	minPanel := max(minTreePanelWidth-frame, 0)
	maxPanel := max(totalWidth/2-frame, minPanel)
	panelContentWidth := clamp(preferred, minPanel, maxPanel)

	width := panelContentWidth + frame
	if totalWidth-width < minContentWidth {
		width = max(totalWidth-minContentWidth, 0)
	}
	return min(width, totalWidth)
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
