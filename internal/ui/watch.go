package ui

import (
	"log"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/kyaoi/pdfview/internal/tree"
)

type fileEventMsg struct {
	path string
	op   fsnotify.Op
}

type fileWatchErrMsg struct {
	err error
}

// startWatching follows the directory holding path. Only one directory is
// watched at a time.
func (m *Model) startWatching(path string) tea.Cmd {
	if !m.watch || path == "" {
		return nil
	}
	path = filepath.Clean(path)
	if err := m.ensureWatcher(); err != nil {
		m.setError(err)
		return nil
	}

	dir := filepath.Dir(path)
	if dir != m.watchDir {
		if m.watchDir != "" {
			_ = m.watcher.Remove(m.watchDir)
		}
		if err := m.watcher.Add(dir); err != nil {
			m.setError(err)
			return nil
		}
		m.watchDir = dir
	}

	m.watchedFile = path
	if m.waiting {
		return nil
	}
	m.waiting = true
	return m.waitForFileEvent()
}

func (m *Model) ensureWatcher() error {
	if m.watcher != nil {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher
	m.watchChan = make(chan tea.Msg, 10)

	go m.watchLoop(watcher, m.watchChan)
	return nil
}

func (m *Model) watchLoop(watcher *fsnotify.Watcher, out chan<- tea.Msg) {
	defer close(out)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			out <- fileEventMsg{path: event.Name, op: event.Op}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			out <- fileWatchErrMsg{err: err}
		}
	}
}

func (m *Model) waitForFileEvent() tea.Cmd {
	ch := m.watchChan
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) handleFileEvent(msg fileEventMsg) tea.Cmd {
	var cmd tea.Cmd
	path := filepath.Clean(msg.path)
	if m.watchedFile != "" && path == m.watchedFile && msg.op&(fsnotify.Write|fsnotify.Create) != 0 {
		cmd = m.reloadHeldFile()
	}
	if tree.IsPDF(path) && msg.op&(fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
		m.reloadTree()
	}
	return tea.Batch(cmd, m.waitForFileEvent())
}

// reloadHeldFile re-reads the held file after it changed on disk and hands
// the new bytes to a mounted viewer.
func (m *Model) reloadHeldFile() tea.Cmd {
	if m.held == nil {
		return nil
	}
	file, err := ReadFile(m.held.Path)
	if err != nil {
		// editors often write through a rename; the Create that follows
		// brings the file back
		log.Printf("[watch] re-read %s: %v", m.held.Path, err)
		return nil
	}
	if sameFile(file, m.held) {
		return nil
	}
	log.Printf("[watch] %s changed (%d bytes)", file.Path, file.Size)
	m.held = file
	m.setStatus("Reloaded " + file.Name)
	if m.viewer != nil && m.viewer.File().Path == file.Path {
		return m.viewer.Reload(file)
	}
	return nil
}

// Close stops the file watcher.
func (m *Model) Close() error {
	if m.watcher == nil {
		return nil
	}
	err := m.watcher.Close()
	m.watcher = nil
	return err
}
