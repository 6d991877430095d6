package ui

import (
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kyaoi/pdfview/internal/tree"
	"github.com/kyaoi/pdfview/internal/viewer"
)

type treeLine struct {
	entry *tree.Node
	label string
}

func (m *Model) moveTreeSelection(delta int) {
	if len(m.flatTree) == 0 {
		return
	}
	m.treeSelection = clamp(m.treeSelection+delta, 0, len(m.flatTree)-1)
	m.updateTreeContent(m.treeContentWidth)
}

// activateTreeEntry expands a directory or selects a file. Selecting moves
// focus to the card so a second enter opens the viewer.
func (m *Model) activateTreeEntry() tea.Cmd {
	entry := m.currentTreeEntry()
	if entry == nil {
		return nil
	}
	if entry.IsDir {
		if !entry.Open {
			entry.Open = true
			if m.loadNode(entry) {
				m.refreshTreeViewWithSelection(entry.Path)
			}
			return nil
		}
		if m.loadNode(entry) && len(entry.Children) > 0 {
			m.moveTreeSelection(1)
		}
		return nil
	}
	file, err := ReadFile(m.absPath(entry.Path))
	if err != nil {
		m.setError(err)
		return nil
	}
	cmd := m.SelectFiles([]*viewer.File{file})
	m.blurTree()
	return cmd
}

func (m *Model) closeOrAscend() {
	entry := m.currentTreeEntry()
	if entry == nil {
		return
	}
	if entry.IsDir && entry.Open && entry.Parent != nil {
		entry.Open = false
		maxWidth := m.rebuildFlatTree()
		if idx := m.indexForPath(entry.Path); idx >= 0 {
			m.treeSelection = idx
		} else {
			m.treeSelection = clamp(m.treeSelection, 0, len(m.flatTree)-1)
		}
		m.treeContentWidth = maxWidth
		m.updateTreeContent(maxWidth)
		return
	}
	if entry.Parent != nil {
		m.refreshTreeViewWithSelection(entry.Parent.Path)
	}
}

func (m *Model) currentTreeEntry() *tree.Node {
	if len(m.flatTree) == 0 || m.treeSelection < 0 || m.treeSelection >= len(m.flatTree) {
		return nil
	}
	return m.flatTree[m.treeSelection].entry
}

func (m *Model) absPath(rel string) string {
	return filepath.Join(m.rootDir, filepath.FromSlash(rel))
}

// heldRelPath is the held file's path within the tree, or "" when the file
// lives outside it.
func (m *Model) heldRelPath() string {
	if m.held == nil || m.rootDir == "" {
		return ""
	}
	rel, err := filepath.Rel(m.rootDir, m.held.Path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (m *Model) refreshTreeViewWithSelection(path string) {
	if m.treeRoot == nil {
		return
	}
	if !m.loadNode(m.treeRoot) {
		return
	}
	m.expandPath(path)
	maxWidth := m.rebuildFlatTree()
	if len(m.flatTree) > 0 {
		if idx := m.indexForPath(path); idx >= 0 {
			m.treeSelection = idx
		} else {
			m.treeSelection = clamp(m.treeSelection, 0, len(m.flatTree)-1)
		}
	} else {
		m.treeSelection = 0
	}
	m.treeContentWidth = maxWidth
	m.updateTreeContent(maxWidth)
}

// reloadTree lists the filesystem again, keeping the current selection when
// it still exists.
func (m *Model) reloadTree() {
	if m.treeRoot == nil {
		return
	}
	selected := ""
	if entry := m.currentTreeEntry(); entry != nil {
		selected = entry.Path
	}
	var walk func(*tree.Node)
	walk = func(node *tree.Node) {
		for _, child := range node.Children {
			if child.IsDir {
				walk(child)
			}
		}
		node.Reload()
	}
	walk(m.treeRoot)
	m.refreshTreeViewWithSelection(selected)
}

func (m *Model) expandPath(path string) {
	if m.treeRoot == nil || path == "" {
		return
	}
	m.treeRoot.Open = true
	current := m.treeRoot
	for _, part := range strings.Split(path, "/") {
		if !m.loadNode(current) {
			return
		}
		child := current.ChildByName(part)
		if child == nil {
			return
		}
		if child.IsDir {
			child.Open = true
		}
		current = child
	}
}

func (m *Model) rebuildFlatTree() int {
	if m.treeRoot == nil {
		m.flatTree = nil
		return 0
	}
	var lines []treeLine
	maxWidth := 0
	var walk func(*tree.Node, int)
	walk = func(node *tree.Node, depth int) {
		label := formatTreeLabel(node, depth)
		if w := lipgloss.Width(label); w > maxWidth {
			maxWidth = w
		}
		lines = append(lines, treeLine{entry: node, label: label})
		if node.IsDir && node.Open {
			if !m.loadNode(node) {
				return
			}
			for _, child := range node.Children {
				walk(child, depth+1)
			}
		}
	}
	walk(m.treeRoot, 0)
	m.flatTree = lines
	return maxWidth
}

func (m *Model) updateTreeContent(width int) {
	if m.treeRoot == nil {
		return
	}
	if width <= 0 {
		width = minTreePanelWidth
	}
	held := m.heldRelPath()
	var builder strings.Builder
	for i, line := range m.flatTree {
		text := line.label
		switch {
		case i == m.treeSelection && m.treeFocus:
			builder.WriteString(treeSelectedActive.Render(text))
		case i == m.treeSelection:
			builder.WriteString(treeSelectedInactive.Render(text))
		case held != "" && line.entry.Path == held:
			builder.WriteString(treeHeldStyle.Render(text))
		default:
			builder.WriteString(treeLineStyle.Render(text))
		}
		if i < len(m.flatTree)-1 {
			builder.WriteByte('\n')
		}
	}
	m.treePreferredWidth = max(width+4, minTreePanelWidth)
	m.treeVP.SetContent(builder.String())
	m.ensureSelectionVisible()
}

func (m *Model) indexForPath(path string) int {
	for i, line := range m.flatTree {
		if line.entry.Path == path {
			return i
		}
	}
	return -1
}

func (m *Model) ensureSelectionVisible() {
	if len(m.flatTree) == 0 || m.treeVP.Height == 0 {
		return
	}
	if m.treeSelection < m.treeVP.YOffset {
		m.treeVP.SetYOffset(m.treeSelection)
		return
	}
	bottom := m.treeVP.YOffset + m.treeVP.Height - 1
	if m.treeSelection > bottom {
		m.treeVP.SetYOffset(m.treeSelection - m.treeVP.Height + 1)
	}
}

func (m *Model) focusTree() {
	if !m.treeVisible {
		return
	}
	m.treeFocus = true
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
	m.ensureSelectionVisible()
}

func (m *Model) blurTree() {
	m.treeFocus = false
	m.updateTreePanelStyle()
	m.updateTreeContent(m.treeContentWidth)
}

func (m *Model) updateTreePanelStyle() {
	color := treeBlurBorderColor
	if m.treeFocus {
		color = treeFocusBorderColor
	}
	m.treeVP.Style = treePanelStyle(color)
}

func (m *Model) loadNode(node *tree.Node) bool {
	if node == nil {
		return false
	}
	if err := node.EnsureLoaded(); err != nil {
		m.setError(err)
		return false
	}
	return true
}

func treePanelStyle(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(color)
}

func formatTreeLabel(entry *tree.Node, depth int) string {
	if depth == 0 {
		return entry.Name + "/"
	}
	indent := strings.Repeat("  ", depth-1)
	indicator := "  "
	if entry.IsDir {
		if entry.Open {
			indicator = "- "
		} else {
			indicator = "+ "
		}
	}
	label := indent + indicator + entry.Name
	if entry.IsDir {
		label += "/"
	}
	return label
}
