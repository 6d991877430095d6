package tree

import (
	"sort"
	"strings"
)

// Loader retrieves child entries for a particular node path.
type Loader interface {
	List(path string) ([]*Node, error)
}

// Node is a directory or PDF file in the picker tree. Path is relative to the
// root and uses forward slashes.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Open     bool
	Size     int64
	Parent   *Node
	Children []*Node

	loader Loader
	loaded bool
}

// NewRoot creates the root node for the tree.
func NewRoot(name string, loader Loader) *Node {
	return &Node{
		Name:   name,
		Path:   "",
		IsDir:  true,
		Open:   true,
		loader: loader,
	}
}

// ChildByName returns the child node with the given name if it exists.
func (n *Node) ChildByName(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// AddChild appends child and sets its parent.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// EnsureLoaded lazily loads child entries for directory nodes.
func (n *Node) EnsureLoaded() error {
	if !n.IsDir || n.loaded || n.loader == nil {
		return nil
	}

	children, err := n.loader.List(n.Path)
	if err != nil {
		return err
	}

	n.Children = children
	for _, child := range n.Children {
		child.Parent = n
		child.loader = n.loader
	}
	n.sortChildren()
	n.loaded = true
	return nil
}

// Reload drops loaded children so the next EnsureLoaded lists again.
func (n *Node) Reload() {
	if n.loader == nil {
		return
	}
	n.loaded = false
	n.Children = nil
}

// Find returns the node at path below n, loading directories on the way.
func (n *Node) Find(path string) *Node {
	if path == "" {
		return n
	}
	current := n
	for _, part := range strings.Split(path, "/") {
		if err := current.EnsureLoaded(); err != nil {
			return nil
		}
		current = current.ChildByName(part)
		if current == nil {
			return nil
		}
	}
	return current
}

// Files returns every file node already loaded below n, depth first.
func (n *Node) Files() []*Node {
	var files []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if !node.IsDir {
			files = append(files, node)
			return
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(n)
	return files
}

// SortRecursive orders children (directories first, then by name) throughout
// the subtree.
func (n *Node) SortRecursive() {
	n.sortChildren()
	for _, child := range n.Children {
		child.SortRecursive()
	}
}

func (n *Node) sortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		ci, cj := n.Children[i], n.Children[j]
		switch {
		case ci.IsDir == cj.IsDir:
			return strings.ToLower(ci.Name) < strings.ToLower(cj.Name)
		case ci.IsDir:
			return true
		default:
			return false
		}
	})
}
