package tree

import "strings"

// Build constructs a fully loaded tree from slash-separated relative paths.
// It backs the picker when the user names files explicitly instead of a
// directory. Duplicate paths are collapsed.
func Build(rootName string, files []string) *Node {
	root := &Node{
		Name:   rootName,
		Path:   "",
		IsDir:  true,
		Open:   true,
		loaded: true,
	}

	for _, rel := range files {
		rel = strings.Trim(rel, "/")
		if rel == "" {
			continue
		}
		parts := strings.Split(rel, "/")
		current := root
		currentPath := ""

		for i, part := range parts {
			currentPath = join(currentPath, part)
			last := i == len(parts)-1
			child := current.ChildByName(part)
			if child == nil {
				child = &Node{Name: part, Path: currentPath, IsDir: !last, Open: !last, loaded: true}
				current.AddChild(child)
			}
			current = child
		}
	}

	root.SortRecursive()
	return root
}
