package document

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// A terminal cell is roughly twice as tall as it is wide.
const cellAspect = 2.0

// Grid describes the character grid a page occupies at a zoom factor.
type Grid struct {
	Columns int
	Rows    int
	// points per column; rows use cellAspect times this
	scale float64
}

// GridFor computes the grid of page p at zoom. baseColumns is the width in
// columns of a US Letter page at zoom 1.
func GridFor(p Page, zoom float64, baseColumns int) Grid {
	if baseColumns < 1 {
		baseColumns = 1
	}
	scale := letterWidth / float64(baseColumns) / zoom
	return Grid{
		Columns: max(1, int(math.Round(p.Width/scale))),
		Rows:    max(1, int(math.Round(p.Height/(scale*cellAspect)))),
		scale:   scale,
	}
}

// Render lays the page's text runs onto its grid and returns one string per
// row, each exactly Columns cells wide. A run that would overlap text already
// placed is shifted right past it; anything past the right edge is dropped.
func Render(p Page, zoom float64, baseColumns int) []string {
	grid := GridFor(p, zoom, baseColumns)
	cells := make([][]string, grid.Rows)
	for i := range cells {
		cells[i] = make([]string, grid.Columns)
	}

	for _, run := range p.Runs {
		row := clampInt(int(math.Floor((p.Height-run.Y)/(grid.scale*cellAspect))), 0, grid.Rows-1)
		col := max(0, int(math.Floor(run.X/grid.scale)))
		line := cells[row]
		text := sanitize(run.Text)
		col = freeSpan(line, col, ansi.StringWidth(text))
		for _, r := range text {
			w := ansi.StringWidth(string(r))
			if w == 0 {
				continue
			}
			if col+w > len(line) || !free(line, col, w) {
				break
			}
			line[col] = string(r)
			for k := 1; k < w; k++ {
				line[col+k] = wideTail
			}
			col += w
		}
	}

	lines := make([]string, grid.Rows)
	var b strings.Builder
	for i, line := range cells {
		b.Reset()
		for _, cell := range line {
			switch cell {
			case "":
				b.WriteByte(' ')
			case wideTail:
			default:
				b.WriteString(cell)
			}
		}
		lines[i] = b.String()
	}
	return lines
}

// freeSpan returns the first column at or after col where width empty cells
// follow. When no such span fits before the right edge it falls back to the
// first empty column, and the caller stops at the next occupied cell.
func freeSpan(line []string, col, width int) int {
	for c := col; c+width <= len(line); c++ {
		if free(line, c, width) {
			return c
		}
	}
	for c := col; c < len(line); c++ {
		if line[c] == "" {
			return c
		}
	}
	return len(line)
}

func free(line []string, col, width int) bool {
	for k := col; k < col+width && k < len(line); k++ {
		if line[k] != "" {
			return false
		}
	}
	return true
}

// marks the second cell of a double-width rune
const wideTail = "\x00"

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
