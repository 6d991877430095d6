package app

import (
	"fmt"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kyaoi/pdfview/internal/config"
	"github.com/kyaoi/pdfview/internal/prefs"
	"github.com/kyaoi/pdfview/internal/ui"
	"github.com/kyaoi/pdfview/internal/viewer"
)

// Options are the command-line settings that sit outside the config file.
type Options struct {
	ConfigPath string
	PrefsPath  string
	LogPath    string
	AltScreen  bool
}

// Run executes the Bubble Tea program for the given path arguments.
func Run(targets []string, opts Options) error {
	closeLog, err := setupLogging(opts.LogPath)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.PrefsPath != "" {
		cfg.PrefsPath = opts.PrefsPath
	}

	store, err := prefs.OpenFile(cfg.PrefsPath)
	if err != nil {
		return err
	}

	state, err := LoadInitialState(targets)
	if err != nil {
		return err
	}
	state.TreePreferredWidth = cfg.TreeWidth
	state.Watch = cfg.Watch

	log.Printf("[app] start root=%q held=%t prefs=%s", state.RootDir, state.Held != nil, store.Path())
	return runProgram(state, viewer.Options{Config: cfg, Prefs: store}, opts.AltScreen)
}

func runProgram(state ui.State, opts viewer.Options, altScreen bool) error {
	model := ui.NewModel(state, opts)
	defer model.Close()

	programOpts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	program := tea.NewProgram(model, programOpts...)
	_, err := program.Run()
	return err
}

// setupLogging sends the standard logger to path, or discards it when path
// is empty. The terminal belongs to the program while it runs.
func setupLogging(path string) (func(), error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	f, err := tea.LogToFile(path, "pdfview")
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return func() { _ = f.Close() }, nil
}
