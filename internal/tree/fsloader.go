package tree

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var errNotDir = errors.New("path is not a directory")

// FSLoader lists PDF files and the directories that lead to them, reading the
// filesystem under root on demand.
type FSLoader struct {
	root  string
	cache map[string]bool
}

// NewFSLoader creates a loader rooted at root.
func NewFSLoader(root string) *FSLoader {
	return &FSLoader{
		root:  root,
		cache: make(map[string]bool),
	}
}

// List returns the immediate children of relPath: PDF files, and directories
// that contain at least one PDF somewhere below them.
func (l *FSLoader) List(relPath string) ([]*Node, error) {
	dir := l.abs(relPath)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errNotDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var nodes []*Node
	for _, entry := range entries {
		name := entry.Name()
		childPath := join(relPath, name)
		if entry.IsDir() {
			if shouldSkipDir(name) {
				continue
			}
			has, err := l.ContainsPDF(childPath)
			if err != nil {
				return nil, err
			}
			if has {
				nodes = append(nodes, &Node{Name: name, Path: childPath, IsDir: true})
			}
			continue
		}
		if !IsPDF(name) {
			continue
		}
		node := &Node{Name: name, Path: childPath}
		if fi, err := entry.Info(); err == nil {
			node.Size = fi.Size()
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ContainsPDF reports whether relPath has a PDF anywhere in its subtree.
// Results are cached for the lifetime of the loader.
func (l *FSLoader) ContainsPDF(relPath string) (bool, error) {
	if cached, ok := l.cache[relPath]; ok {
		return cached, nil
	}

	entries, err := os.ReadDir(l.abs(relPath))
	if err != nil {
		return false, err
	}

	found := false
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			if IsPDF(name) {
				found = true
				break
			}
			continue
		}
		if shouldSkipDir(name) {
			continue
		}
		has, err := l.ContainsPDF(join(relPath, name))
		if err != nil {
			if errors.Is(err, os.ErrPermission) {
				continue
			}
			return false, err
		}
		if has {
			found = true
			break
		}
	}
	l.cache[relPath] = found
	return found, nil
}

// Abs resolves a tree path to a filesystem path.
func (l *FSLoader) Abs(relPath string) string {
	return l.abs(relPath)
}

func (l *FSLoader) abs(relPath string) string {
	if relPath == "" {
		return l.root
	}
	return filepath.Join(l.root, filepath.FromSlash(relPath))
}

func join(base, part string) string {
	if base == "" {
		return part
	}
	return base + "/" + part
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch strings.ToLower(name) {
	case "node_modules", "vendor", "__pycache__":
		return true
	default:
		return false
	}
}

// IsPDF reports whether name has a .pdf extension, ignoring case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
