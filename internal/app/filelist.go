package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kyaoi/pdfview/internal/tree"
	"github.com/kyaoi/pdfview/internal/ui"
)

// fileListState builds a picker containing only the given PDF files, rooted
// at their deepest common directory. The first file is held.
func fileListState(targets []string) (ui.State, error) {
	abs := make([]string, 0, len(targets))
	for _, target := range targets {
		p, err := filepath.Abs(target)
		if err != nil {
			return ui.State{}, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return ui.State{}, err
		}
		if info.IsDir() {
			return ui.State{}, fmt.Errorf("%s is a directory; pass one directory or a list of PDF files", target)
		}
		if !tree.IsPDF(p) {
			return ui.State{}, fmt.Errorf("%s is not a PDF file", target)
		}
		abs = append(abs, p)
	}

	rootDir := commonDir(abs)
	relPaths := make([]string, 0, len(abs))
	for _, p := range abs {
		rel, err := filepath.Rel(rootDir, p)
		if err != nil {
			return ui.State{}, err
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
	}

	held, err := ui.ReadFile(abs[0])
	if err != nil {
		return ui.State{}, err
	}

	displayRoot := filepath.Base(rootDir)
	return ui.State{
		HeaderPath:        fmt.Sprintf("%s/ (%d files)", displayRoot, len(relPaths)),
		TreeVisible:       true,
		TreeRoot:          tree.Build(displayRoot, relPaths),
		TreeSelectionPath: relPaths[0],
		RootDir:           rootDir,
		DisplayRoot:       displayRoot,
		Held:              held,
	}, nil
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	dir := filepath.Dir(paths[0])
	for _, p := range paths[1:] {
		for !within(dir, p) {
			parent := filepath.Dir(dir)
			if parent == dir {
				return dir
			}
			dir = parent
		}
	}
	return dir
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
