package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kyaoi/pdfview/internal/tree"
	"github.com/kyaoi/pdfview/internal/ui"
)

// LoadInitialState analyses the path arguments and prepares the shell state.
// No argument means the current directory. A directory opens a picker rooted
// there. A single PDF opens a picker over its directory with that file held.
// Several PDFs open a picker over exactly those files with the first held.
func LoadInitialState(targets []string) (ui.State, error) {
	switch len(targets) {
	case 0:
		return directoryState(".")
	case 1:
		info, err := os.Stat(targets[0])
		if err != nil {
			return ui.State{}, err
		}
		if info.IsDir() {
			return directoryState(targets[0])
		}
		return singleFileState(targets[0])
	default:
		return fileListState(targets)
	}
}

func directoryState(target string) (ui.State, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return ui.State{}, err
	}

	rootName := filepath.Base(absTarget)
	loader := tree.NewFSLoader(absTarget)
	root := tree.NewRoot(rootName, loader)

	state := ui.State{
		HeaderPath:  rootName + "/",
		TreeVisible: true,
		TreeRoot:    root,
		RootDir:     absTarget,
		DisplayRoot: rootName,
		FocusTree:   true,
	}

	hasPDF, err := loader.ContainsPDF("")
	if err != nil {
		return ui.State{}, err
	}
	if !hasPDF {
		state.HeaderPath = fmt.Sprintf("No PDF files found in %s/", rootName)
	}
	return state, nil
}

func singleFileState(target string) (ui.State, error) {
	if !tree.IsPDF(target) {
		return ui.State{}, fmt.Errorf("%s is not a PDF file", target)
	}
	held, err := ui.ReadFile(target)
	if err != nil {
		return ui.State{}, err
	}

	state, err := directoryState(filepath.Dir(held.Path))
	if err != nil {
		return ui.State{}, err
	}
	state.Held = held
	state.TreeSelectionPath = held.Name
	state.HeaderPath = displayPath(held.Path)
	state.FocusTree = false
	return state, nil
}

func displayPath(absPath string) string {
	if wd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(wd, absPath); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(absPath)
}
