// Package document turns PDF bytes into pages of positioned text and lays
// those pages out on a character grid at a given zoom factor.
package document

import "errors"

// US Letter, used when a page carries no usable MediaBox.
const (
	letterWidth  = 612.0
	letterHeight = 792.0
)

var (
	// ErrEmpty is returned for zero-length input or a document without pages.
	ErrEmpty = errors.New("document has no pages")
	// ErrCorrupt is returned when the bytes cannot be parsed as a PDF.
	ErrCorrupt = errors.New("document is not a readable PDF")
)

// Run is a piece of text drawn at a position in page space. The origin is
// the bottom-left corner of the page, as in PDF.
type Run struct {
	X    float64
	Y    float64
	Text string
}

// Page is a single parsed page.
type Page struct {
	Number int
	Width  float64
	Height float64
	Runs   []Run
}

// Document is a parsed PDF.
type Document struct {
	Name  string
	Pages []Page
}

// NumPages returns the number of pages.
func (d *Document) NumPages() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// Page returns the 1-based page n.
func (d *Document) Page(n int) (Page, bool) {
	if d == nil || n < 1 || n > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[n-1], true
}
