package viewer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaoi/pdfview/internal/config"
	"github.com/kyaoi/pdfview/internal/document"
	"github.com/kyaoi/pdfview/internal/markdown"
	"github.com/kyaoi/pdfview/internal/prefs"
)

// File is an in-memory PDF handed to the viewer.
type File struct {
	Name    string
	Path    string
	Data    []byte
	Size    int64
	ModTime time.Time
}

// Options wires the viewer's collaborators.
type Options struct {
	Config config.Config
	Prefs  prefs.Store
	Loader document.Loader
}

// CloseMsg is emitted when the user dismisses the viewer.
type CloseMsg struct{}

type docLoadedMsg struct {
	generation int
	doc        *document.Document
	err        error
}

type downloadResultMsg struct {
	path string
	err  error
}

type printResultMsg struct {
	name string
	err  error
}

// load generations are unique across viewers so a result addressed to a
// disposed viewer is never accepted by its replacement
var loadGeneration atomic.Int64

// chrome lines around the page viewport: header, controls, status
const chromeHeight = 3

// Model is the viewing surface for one file.
type Model struct {
	opts  Options
	file  *File
	state State
	doc   *document.Document

	loading    bool
	loadErr    error
	generation int
	cancelLoad context.CancelFunc
	jobs       *jobBus
	busy       map[jobKind]bool

	spinner     spinner.Model
	pageVP      viewport.Model
	gotoInput   textinput.Model
	gotoActive  bool
	pendingKey  string
	pageOffsets map[int]int
	markdown    markdown.Renderer

	status    string
	statusErr bool
	width     int
	height    int
}

// New mounts a viewer for file. The display mode comes from the preference
// store.
func New(file *File, opts Options) *Model {
	if opts.Loader == nil {
		opts.Loader = document.PDFLoader{Workers: opts.Config.LoadWorkers}
	}
	limits := ZoomLimits{
		Min:     opts.Config.MinZoom,
		Max:     opts.Config.MaxZoom,
		Step:    opts.Config.ZoomStep,
		Default: opts.Config.DefaultZoom,
	}

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(0, 0)
	vp.MouseWheelEnabled = true
	vp.SetHorizontalStep(4)

	gotoInput := textinput.New()
	gotoInput.Prompt = "go to page: "
	gotoInput.CharLimit = 6
	gotoInput.Placeholder = "1"
	gotoInput.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errors.New("digits only")
			}
		}
		return nil
	}

	return &Model{
		opts:        opts,
		file:        file,
		state:       NewState(LoadMode(opts.Prefs), limits),
		jobs:        newJobBus(),
		busy:        map[jobKind]bool{},
		spinner:     spin,
		pageVP:      vp,
		gotoInput:   gotoInput,
		pageOffsets: map[int]int{},
	}
}

// File returns the file the viewer was mounted with.
func (m *Model) File() *File {
	return m.file
}

// State returns a copy of the current view state.
func (m *Model) State() State {
	return m.state
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.startLoad()
}

// Reload swaps in new bytes for the same document and loads them again. Any
// load still in flight is abandoned.
func (m *Model) Reload(file *File) tea.Cmd {
	if file == nil {
		return nil
	}
	m.file = file
	return m.startLoad()
}

// Dispose abandons any load in flight. Call it before dropping the viewer.
func (m *Model) Dispose() {
	if m.cancelLoad != nil {
		m.cancelLoad()
		m.cancelLoad = nil
	}
}

// Resize sets the outer size of the viewer.
func (m *Model) Resize(width, height int) {
	m.width = width
	m.height = height
	m.pageVP.Width = max(width, 1)
	m.pageVP.Height = max(height-chromeHeight, 1)
	m.gotoInput.Width = max(width-len(m.gotoInput.Prompt)-2, 4)
	m.refreshPages(false)
}

func (m *Model) startLoad() tea.Cmd {
	if m.file == nil {
		m.loadErr = ErrNoFile
		return nil
	}
	if m.cancelLoad != nil {
		m.cancelLoad()
	}
	m.generation = int(loadGeneration.Add(1))
	generation := m.generation
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelLoad = cancel
	m.loading = true
	m.loadErr = nil

	loader := m.opts.Loader
	name, data := m.file.Name, m.file.Data
	run := m.jobs.Start(ctx, jobKindLoad, func(ctx context.Context) (tea.Msg, error) {
		doc, err := loader.Load(ctx, name, data)
		return docLoadedMsg{generation: generation, doc: doc, err: err}, err
	})
	return tea.Batch(run, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.loading || m.busy[jobKindPrint] || m.busy[jobKindDownload] {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		switch msg.Snapshot.Kind {
		case jobKindPrint, jobKindDownload:
			m.busy[msg.Snapshot.Kind] = true
			return m, m.spinner.Tick
		}
		return m, nil
	case jobResultEnvelope:
		m.busy[msg.Snapshot.Kind] = false
		return m.Update(msg.Payload)
	case docLoadedMsg:
		m.handleLoaded(msg)
		return m, nil
	case downloadResultMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Download failed: %v", msg.err))
		} else {
			m.setStatus(fmt.Sprintf("Saved to %s", msg.path))
		}
		return m, nil
	case printResultMsg:
		if msg.err != nil {
			m.setError(fmt.Sprintf("Print failed: %v", msg.err))
		} else {
			m.setStatus(fmt.Sprintf("Sent %s to the printer.", msg.name))
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
		return m, nil
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.pageVP, cmd = m.pageVP.Update(msg)
		m.syncPageFromScroll()
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoaded(msg docLoadedMsg) {
	if msg.generation != m.generation {
		log.Printf("[viewer] dropping stale load result (generation %d, current %d)", msg.generation, m.generation)
		return
	}
	m.loading = false
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		m.loadErr = msg.err
		m.doc = nil
		m.state.SetTotal(0)
		log.Printf("[viewer] load %s failed: %v", m.file.Name, msg.err)
		return
	}
	m.loadErr = nil
	m.doc = msg.doc
	m.state.SetTotal(msg.doc.NumPages())
	m.setStatus(fmt.Sprintf("Loaded %s (%d pages).", m.file.Name, m.state.Total))
	m.refreshPages(false)
	m.scrollToPage(m.state.Page)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gotoActive {
		switch msg.Type {
		case tea.KeyEnter:
			value := strings.TrimSpace(m.gotoInput.Value())
			m.exitGoto()
			if value == "" {
				return m, nil
			}
			n, err := strconv.Atoi(value)
			if err == nil {
				err = m.state.GoTo(n)
			}
			if err != nil {
				m.setError(fmt.Sprintf("Cannot go to %q: %v", value, err))
				return m, nil
			}
			m.pageChanged()
			return m, nil
		case tea.KeyEsc:
			m.exitGoto()
			return m, nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.gotoInput, cmd = m.gotoInput.Update(msg)
		return m, cmd
	}

	key := msg.String()
	if key != "g" {
		m.pendingKey = ""
	}

	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q":
		return m, m.Close()
	}

	if m.loadErr != nil {
		if key == "r" {
			return m, m.startLoad()
		}
		return m, nil
	}

	switch key {
	case "n", "l", "right", "pgdown", " ":
		if m.state.Next() {
			m.pageChanged()
		}
	case "p", "h", "left", "pgup", "backspace":
		if m.state.Prev() {
			m.pageChanged()
		}
	case "home":
		m.firstPage()
	case "end", "G":
		if m.state.Total > 0 && m.state.GoTo(m.state.Total) == nil {
			m.pageChanged()
		}
	case "g":
		if m.pendingKey == "g" {
			m.pendingKey = ""
			m.firstPage()
		} else {
			m.pendingKey = "g"
		}
	case "+", "=":
		m.state.ZoomIn()
		m.refreshPages(true)
	case "-", "_":
		m.state.ZoomOut()
		m.refreshPages(true)
	case "0":
		m.state.ResetZoom()
		m.refreshPages(true)
	case "m":
		return m, m.ToggleMode()
	case "d":
		return m, m.Download()
	case "P":
		return m, m.Print()
	case ":":
		return m, m.enterGoto()
	case "j", "down":
		m.pageVP.ScrollDown(1)
		m.syncPageFromScroll()
	case "k", "up":
		m.pageVP.ScrollUp(1)
		m.syncPageFromScroll()
	case "ctrl+d":
		m.pageVP.HalfPageDown()
		m.syncPageFromScroll()
	case "ctrl+u":
		m.pageVP.HalfPageUp()
		m.syncPageFromScroll()
	case "H":
		m.pageVP.ScrollLeft(max(2, m.pageVP.Width/6))
	case "L":
		m.pageVP.ScrollRight(max(2, m.pageVP.Width/6))
	}
	return m, nil
}

// Close asks the shell to dismiss the viewer. Local state is kept.
func (m *Model) Close() tea.Cmd {
	m.exitGoto()
	return func() tea.Msg { return CloseMsg{} }
}

// ToggleMode flips between paginated and continuous display and persists the
// choice. A failed write is reported but the new mode stays in effect.
func (m *Model) ToggleMode() tea.Cmd {
	mode := m.state.ToggleMode()
	if err := SaveMode(m.opts.Prefs, mode); err != nil {
		log.Printf("[viewer] persist mode %s: %v", mode, err)
		m.setError(fmt.Sprintf("Mode %s (not saved: %v)", mode, err))
	} else {
		m.setStatus(fmt.Sprintf("Mode: %s", mode))
	}
	m.refreshPages(false)
	m.scrollToPage(m.state.Page)
	return nil
}

// Download saves the file into the configured download directory.
func (m *Model) Download() tea.Cmd {
	if m.file == nil || len(m.file.Data) == 0 {
		return nil
	}
	dir := m.opts.Config.DownloadDir
	name, data := m.file.Name, m.file.Data
	m.setStatus(fmt.Sprintf("Saving %s…", name))
	return m.jobs.Start(context.Background(), jobKindDownload, func(context.Context) (tea.Msg, error) {
		path, err := Download(dir, name, data)
		return downloadResultMsg{path: path, err: err}, err
	})
}

// Print sends the file to the configured print command.
func (m *Model) Print() tea.Cmd {
	if m.file == nil || len(m.file.Data) == 0 {
		return nil
	}
	command := append([]string(nil), m.opts.Config.PrintCommand...)
	timeout := m.opts.Config.PrintTimeout.Duration
	name, data := m.file.Name, m.file.Data
	m.setStatus(fmt.Sprintf("Printing %s…", name))
	return m.jobs.Start(context.Background(), jobKindPrint, func(ctx context.Context) (tea.Msg, error) {
		err := Print(ctx, command, timeout, name, data)
		return printResultMsg{name: name, err: err}, err
	})
}

func (m *Model) firstPage() {
	if m.state.Total > 0 && m.state.GoTo(1) == nil {
		m.pageChanged()
	}
}

func (m *Model) pageChanged() {
	if m.state.Mode == ModePaginated {
		m.refreshPages(false)
		m.pageVP.GotoTop()
		return
	}
	m.scrollToPage(m.state.Page)
}

func (m *Model) enterGoto() tea.Cmd {
	if m.state.Total == 0 {
		return nil
	}
	m.gotoActive = true
	m.gotoInput.SetValue("")
	return m.gotoInput.Focus()
}

func (m *Model) exitGoto() {
	m.gotoActive = false
	m.gotoInput.Blur()
}

func (m *Model) setStatus(text string) {
	m.status = text
	m.statusErr = false
}

func (m *Model) setError(text string) {
	m.status = text
	m.statusErr = true
}

// refreshPages re-renders the visible pages into the viewport. keepOffset
// preserves the relative scroll position, used when zooming.
func (m *Model) refreshPages(keepOffset bool) {
	if m.doc == nil {
		m.pageVP.SetContent("")
		return
	}
	ratio := 0.0
	if keepOffset {
		if total := m.pageVP.TotalLineCount(); total > 0 {
			ratio = float64(m.pageVP.YOffset) / float64(total)
		}
	}

	content, offsets := m.renderPages()
	m.pageOffsets = offsets
	m.pageVP.SetContent(content)

	if keepOffset {
		m.pageVP.SetYOffset(int(ratio * float64(m.pageVP.TotalLineCount())))
	}
}

func (m *Model) scrollToPage(n int) {
	if offset, ok := m.pageOffsets[n]; ok {
		m.pageVP.SetYOffset(offset)
	}
}

// syncPageFromScroll keeps Page pointing at the page at the top of the
// viewport while scrolling through continuous output.
func (m *Model) syncPageFromScroll() {
	if m.state.Mode != ModeContinuous || m.state.Total == 0 {
		return
	}
	top := m.pageVP.YOffset
	current := 1
	for n := 1; n <= m.state.Total; n++ {
		offset, ok := m.pageOffsets[n]
		if !ok || offset > top {
			break
		}
		current = n
	}
	m.state.Page = current
}

var _ tea.Model = (*Model)(nil)
