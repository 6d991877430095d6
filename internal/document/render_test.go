package document

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func letterPage(runs ...Run) Page {
	return Page{Number: 1, Width: letterWidth, Height: letterHeight, Runs: runs}
}

func TestGridScalesWithZoom(t *testing.T) {
	page := letterPage()
	cases := []struct {
		zoom float64
		cols int
		rows int
	}{
		{zoom: 1, cols: 80, rows: 52},
		{zoom: 2, cols: 160, rows: 104},
		{zoom: 0.5, cols: 40, rows: 26},
		{zoom: 0.1, cols: 8, rows: 5},
	}
	for _, tc := range cases {
		grid := GridFor(page, tc.zoom, 80)
		assert.Equal(t, tc.cols, grid.Columns, "zoom %.1f", tc.zoom)
		assert.Equal(t, tc.rows, grid.Rows, "zoom %.1f", tc.zoom)
	}
}

func TestRenderPlacesRunsByPosition(t *testing.T) {
	page := letterPage(Run{X: 72, Y: 720, Text: "Hello"})

	lines := Render(page, 1, 80)
	require.Len(t, lines, 52)
	for _, line := range lines {
		assert.Equal(t, 80, ansi.StringWidth(line))
	}
	assert.Equal(t, strings.Repeat(" ", 9)+"Hello", strings.TrimRight(lines[4], " "))

	zoomed := Render(page, 2, 80)
	require.Len(t, zoomed, 104)
	assert.Equal(t, strings.Repeat(" ", 18)+"Hello", strings.TrimRight(zoomed[9], " "))
}

func TestRenderShiftsOverlappingRuns(t *testing.T) {
	page := letterPage(
		Run{X: 0, Y: 792, Text: "abc"},
		Run{X: 0, Y: 792, Text: "de"},
	)
	lines := Render(page, 1, 80)
	assert.True(t, strings.HasPrefix(lines[0], "abcde"), "got %q", lines[0])
}

func TestRenderShiftsRunThatWouldRunIntoLaterText(t *testing.T) {
	page := letterPage(
		Run{X: 40, Y: 792, Text: "world"},
		Run{X: 16, Y: 792, Text: "hello"},
	)
	lines := Render(page, 1, 80)
	assert.True(t, strings.HasPrefix(lines[0], "     worldhello"), "got %q", lines[0])
}

func TestRenderShortRunFillsGapBeforeLaterText(t *testing.T) {
	page := letterPage(
		Run{X: 40, Y: 792, Text: "world"},
		Run{X: 16, Y: 792, Text: "hi"},
	)
	lines := Render(page, 1, 80)
	assert.True(t, strings.HasPrefix(lines[0], "  hi world"), "got %q", lines[0])
}

func TestRenderTruncatesAtRightEdge(t *testing.T) {
	page := letterPage(Run{X: 600, Y: 400, Text: "overflowing"})
	lines := Render(page, 1, 80)
	for _, line := range lines {
		assert.Equal(t, 80, ansi.StringWidth(line))
	}
}

func TestRenderKeepsWideRunesAligned(t *testing.T) {
	page := letterPage(Run{X: 0, Y: 792, Text: "日本"})
	lines := Render(page, 1, 80)
	assert.Equal(t, 80, ansi.StringWidth(lines[0]))
	assert.True(t, strings.HasPrefix(lines[0], "日本 "))
}

func TestRenderReplacesControlCharacters(t *testing.T) {
	page := letterPage(Run{X: 0, Y: 792, Text: "a\tb\x00c"})
	lines := Render(page, 1, 80)
	assert.True(t, strings.HasPrefix(lines[0], "a b c"), "got %q", lines[0])
}
