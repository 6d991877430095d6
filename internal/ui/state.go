package ui

import (
	"github.com/kyaoi/pdfview/internal/tree"
	"github.com/kyaoi/pdfview/internal/viewer"
)

// State contains the data required to bootstrap the shell.
type State struct {
	HeaderPath         string
	TreeVisible        bool
	TreePreferredWidth int
	TreeRoot           *tree.Node
	TreeSelectionPath  string
	RootDir            string
	DisplayRoot        string
	Held               *viewer.File
	FocusTree          bool
	// Watch enables live reload of the held file.
	Watch bool
}
