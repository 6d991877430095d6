package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyaoi/pdfview/internal/config"
	"github.com/kyaoi/pdfview/internal/document"
	"github.com/kyaoi/pdfview/internal/prefs"
	"github.com/kyaoi/pdfview/internal/tuitest"
)

type fakeLoader struct {
	pages int
	err   error
	calls atomic.Int32
}

func (f *fakeLoader) Load(ctx context.Context, name string, data []byte) (*document.Document, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	pages := make([]document.Page, f.pages)
	for i := range pages {
		pages[i] = document.Page{
			Number: i + 1,
			Width:  612,
			Height: 792,
			Runs:   []document.Run{{X: 72, Y: 720, Text: fmt.Sprintf("body of page %d", i+1)}},
		}
	}
	return &document.Document{Name: name, Pages: pages}, nil
}

func newTestViewer(t *testing.T, loader document.Loader, store prefs.Store) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.DownloadDir = t.TempDir()
	m := New(&File{Name: "report.pdf", Path: "/tmp/report.pdf", Data: []byte("%PDF")}, Options{
		Config: cfg,
		Prefs:  store,
		Loader: loader,
	})
	m.Resize(120, 40)
	return m
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(tuitest.Key(k))
		tuitest.Drain(m, cmd)
	}
}

func TestReportScenario(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := newTestViewer(t, &fakeLoader{pages: 5}, store)
	tuitest.Drain(m, m.Init())

	state := m.State()
	require.Equal(t, ModePaginated, state.Mode)
	require.Equal(t, 1, state.Page)
	require.Equal(t, 5, state.Total)
	assert.Contains(t, ansi.Strip(m.View()), "page 1 / 5")

	press(m, "n", "n", "n")
	assert.Equal(t, 4, m.State().Page)

	press(m, "+", "+")
	press(m, "m")
	state = m.State()
	assert.Equal(t, ModeContinuous, state.Mode)
	assert.Equal(t, 120, state.ZoomPercent())
	value, _ := store.Get(prefs.ViewModeKey)
	assert.Equal(t, "continuous", value)

	content, offsets := m.renderPages()
	plain := ansi.Strip(content)
	for n := 1; n <= 5; n++ {
		assert.Contains(t, plain, fmt.Sprintf("— %d / 5 —", n))
		assert.Contains(t, plain, fmt.Sprintf("body of page %d", n))
	}
	assert.Len(t, offsets, 5)

	grid := document.GridFor(document.Page{Width: 612, Height: 792}, 1.2, 80)
	firstLine := strings.Split(content, "\n")[0]
	assert.Equal(t, grid.Columns+2, lipgloss.Width(strings.TrimSpace(ansi.Strip(firstLine))))
}

func TestNavigationIsNoOpAtBounds(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 2}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())

	press(m, "p")
	assert.Equal(t, 1, m.State().Page)
	press(m, "n", "n", "n")
	assert.Equal(t, 2, m.State().Page)
	press(m, "g", "g")
	assert.Equal(t, 1, m.State().Page)
	press(m, "G")
	assert.Equal(t, 2, m.State().Page)
}

func TestVimKeysTurnPages(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 5}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())

	press(m, "l")
	assert.Equal(t, 2, m.State().Page)
	press(m, "l", "l", "h")
	assert.Equal(t, 3, m.State().Page)
	press(m, "H", "L")
	assert.Equal(t, 3, m.State().Page, "H and L scroll sideways only")
}

func TestInitialModeComesFromPreferences(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(prefs.ViewModeKey, string(ModeContinuous)))
	m := newTestViewer(t, &fakeLoader{pages: 1}, store)
	assert.Equal(t, ModeContinuous, m.State().Mode)
}

func TestToggleTwicePersistsFinalMode(t *testing.T) {
	store := prefs.NewMemoryStore()
	m := newTestViewer(t, &fakeLoader{pages: 3}, store)
	tuitest.Drain(m, m.Init())

	press(m, "m", "m")
	assert.Equal(t, ModePaginated, m.State().Mode)
	value, _ := store.Get(prefs.ViewModeKey)
	assert.Equal(t, "paginated", value)
	assert.Equal(t, 2, store.Writes())
}

type failingStore struct{ prefs.MemoryStore }

func (*failingStore) Set(string, string) error { return errors.New("disk full") }

func TestToggleKeepsModeWhenPersistFails(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 3}, &failingStore{})
	tuitest.Drain(m, m.Init())

	press(m, "m")
	assert.Equal(t, ModeContinuous, m.State().Mode)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "disk full")
}

func TestStaleLoadResultIsDropped(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 5}, prefs.NewMemoryStore())
	m.startLoad()
	stale := m.generation
	m.Reload(&File{Name: "report.pdf", Data: []byte("%PDF v2")})

	m.Update(docLoadedMsg{generation: stale, doc: &document.Document{Pages: make([]document.Page, 9)}})
	assert.Equal(t, 0, m.State().Total)
	assert.True(t, m.loading)

	m.Update(docLoadedMsg{generation: m.generation, doc: &document.Document{Pages: make([]document.Page, 5)}})
	assert.Equal(t, 5, m.State().Total)
	assert.False(t, m.loading)
}

func TestReloadKeepsPageWithinNewTotal(t *testing.T) {
	loader := &fakeLoader{pages: 6}
	m := newTestViewer(t, loader, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())
	press(m, "G")
	require.Equal(t, 6, m.State().Page)

	loader.pages = 3
	tuitest.Drain(m, m.Reload(&File{Name: "report.pdf", Data: []byte("%PDF v2")}))
	assert.Equal(t, 3, m.State().Total)
	assert.Equal(t, 3, m.State().Page)
}

func TestLoadFailureShowsRecoverableError(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("%w: bad xref", document.ErrCorrupt)}
	m := newTestViewer(t, loader, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())

	require.Error(t, m.loadErr)
	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Could not open")
	assert.Contains(t, view, "retry")

	press(m, "n")
	assert.Equal(t, 1, m.State().Page)

	loader.err = nil
	loader.pages = 2
	press(m, "r")
	assert.NoError(t, m.loadErr)
	assert.Equal(t, 2, m.State().Total)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCloseEmitsCloseMsgAndKeepsState(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 4}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())
	press(m, "n", "+")

	_, cmd := m.Update(tuitest.Key("esc"))
	require.NotNil(t, cmd)
	assert.Equal(t, CloseMsg{}, cmd())
	assert.Equal(t, 2, m.State().Page)
	assert.Equal(t, 110, m.State().ZoomPercent())
}

func TestGoToPrompt(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 9}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())

	m.Update(tuitest.Key(":"))
	require.True(t, m.gotoActive)
	m.Update(tuitest.Key("7"))
	m.Update(tuitest.Key("enter"))
	assert.False(t, m.gotoActive)
	assert.Equal(t, 7, m.State().Page)

	m.Update(tuitest.Key(":"))
	m.Update(tuitest.Key("4"))
	m.Update(tuitest.Key("2"))
	m.Update(tuitest.Key("enter"))
	assert.Equal(t, 7, m.State().Page)
	assert.True(t, m.statusErr)
}

func TestZoomKeysClampAndReset(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 1}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())
	for i := 0; i < 30; i++ {
		press(m, "-")
	}
	assert.Equal(t, 10, m.State().ZoomPercent())
	assert.Contains(t, ansi.Strip(m.View()), "zoom 10%")
	press(m, "0")
	assert.Equal(t, 100, m.State().ZoomPercent())
}

func TestDownloadWritesIntoDownloadDir(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 1}, prefs.NewMemoryStore())
	tuitest.Drain(m, m.Init())

	press(m, "d")
	assert.False(t, m.statusErr, m.status)
	assert.Contains(t, m.status, m.opts.Config.DownloadDir)
	assert.False(t, m.busy[jobKindDownload])
}

func TestPrintReportsFailure(t *testing.T) {
	m := newTestViewer(t, &fakeLoader{pages: 1}, prefs.NewMemoryStore())
	m.opts.Config.PrintCommand = []string{"/nonexistent/print-command"}
	tuitest.Drain(m, m.Init())

	press(m, "P")
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Print failed")
}

func TestContinuousScrollTracksPage(t *testing.T) {
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(prefs.ViewModeKey, string(ModeContinuous)))
	m := newTestViewer(t, &fakeLoader{pages: 3}, store)
	tuitest.Drain(m, m.Init())

	press(m, "n")
	assert.Equal(t, 2, m.State().Page)
	assert.Equal(t, m.pageOffsets[2], m.pageVP.YOffset)

	press(m, "k")
	assert.Equal(t, 1, m.State().Page)
}
