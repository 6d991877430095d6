package tuitest

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestResponderAnswersQueriesInOrder(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("hello\x1b]11;?\x07world\x1b[6n"))
	assert.Equal(t, "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R", out.String())
}

func TestResponderHandlesSplitQueries(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)
	tr.Process([]byte("\x1b["))
	assert.Empty(t, out.String())
	tr.Process([]byte("6n"))
	assert.Equal(t, "\x1b[1;1R", out.String())
}

func TestParseFramesStripsEscapes(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H\x1b[1mfirst\x1b[0m  \n\x1b[2Jsecond\r\n")
	frames := parseFrames(raw)
	if assert.Len(t, frames, 2) {
		assert.Equal(t, "first", frames[0].Plain)
		assert.Equal(t, "second", frames[1].Plain)
	}
	rec := &Recording{Raw: raw, Frames: frames}
	frame, ok := rec.LastFrameContaining("first")
	assert.True(t, ok)
	assert.Equal(t, 0, frame.Index)
}

type counter struct{ seen []tea.Msg }

type ping struct{ n int }

func (c *counter) Init() tea.Cmd { return nil }
func (c *counter) View() string  { return "" }
func (c *counter) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	c.seen = append(c.seen, msg)
	if p, ok := msg.(ping); ok && p.n < 3 {
		return c, func() tea.Msg { return ping{n: p.n + 1} }
	}
	return c, nil
}

func TestDrainFlattensBatchesAndSequences(t *testing.T) {
	c := &counter{}
	cmd := tea.Batch(
		func() tea.Msg { return ping{n: 1} },
		tea.Sequence(func() tea.Msg { return "a" }, func() tea.Msg { return "b" }),
		tea.Quit,
	)
	delivered := Drain(c, cmd)
	assert.Equal(t, []tea.Msg{ping{n: 1}, ping{n: 2}, "a", "b", ping{n: 3}}, delivered)
	assert.Equal(t, delivered, c.seen)
}
