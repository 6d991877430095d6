package viewer

import (
	"fmt"
	"iter"
	"math"
)

// ZoomLimits bounds and steps the zoom factor.
type ZoomLimits struct {
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// State is the view state of an open document. Page is 1-based; Total is zero
// until the document has loaded.
type State struct {
	Page  int
	Total int
	Zoom  float64
	Mode  Mode

	limits ZoomLimits
}

// NewState returns the state of a freshly mounted viewer.
func NewState(mode Mode, limits ZoomLimits) State {
	return State{
		Page:   1,
		Zoom:   clampZoom(limits.Default, limits),
		Mode:   mode,
		limits: limits,
	}
}

// SetTotal records the page count and pulls Page back into range.
func (s *State) SetTotal(total int) {
	s.Total = max(total, 0)
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Total > 0 && s.Page > s.Total {
		s.Page = s.Total
	}
}

// CanPrev reports whether a previous page exists.
func (s State) CanPrev() bool {
	return s.Total > 0 && s.Page > 1
}

// CanNext reports whether a next page exists.
func (s State) CanNext() bool {
	return s.Total > 0 && s.Page < s.Total
}

// Prev moves one page back and reports whether the page changed.
func (s *State) Prev() bool {
	if !s.CanPrev() {
		return false
	}
	s.Page--
	return true
}

// Next moves one page forward and reports whether the page changed.
func (s *State) Next() bool {
	if !s.CanNext() {
		return false
	}
	s.Page++
	return true
}

// GoTo jumps to page n.
func (s *State) GoTo(n int) error {
	if s.Total == 0 {
		return fmt.Errorf("document not loaded")
	}
	if n < 1 || n > s.Total {
		return fmt.Errorf("page %d out of range 1-%d", n, s.Total)
	}
	s.Page = n
	return nil
}

// ZoomIn adds one step, up to the maximum.
func (s *State) ZoomIn() {
	s.Zoom = clampZoom(roundZoom(s.Zoom+s.limits.Step, s.limits.Step), s.limits)
}

// ZoomOut subtracts one step, down to the minimum.
func (s *State) ZoomOut() {
	s.Zoom = clampZoom(roundZoom(s.Zoom-s.limits.Step, s.limits.Step), s.limits)
}

// ResetZoom returns to the default zoom.
func (s *State) ResetZoom() {
	s.Zoom = clampZoom(s.limits.Default, s.limits)
}

// ZoomPercent is the zoom factor as a whole percentage.
func (s State) ZoomPercent() int {
	return int(math.Round(s.Zoom * 100))
}

// ToggleMode flips the display mode and returns the new one.
func (s *State) ToggleMode() Mode {
	s.Mode = s.Mode.Toggle()
	return s.Mode
}

// Pages yields the page numbers to render: every page in continuous mode,
// only the current page in paginated mode.
func (s State) Pages() iter.Seq[int] {
	return func(yield func(int) bool) {
		if s.Total == 0 {
			return
		}
		if s.Mode == ModePaginated {
			yield(s.Page)
			return
		}
		for n := 1; n <= s.Total; n++ {
			if !yield(n) {
				return
			}
		}
	}
}

// roundZoom drops float noise from repeated steps. Two decimals are kept,
// more when the step itself is finer.
func roundZoom(z, step float64) float64 {
	scale := 100.0
	for step > 0 && step*scale < 1 && scale < 1e9 {
		scale *= 10
	}
	return math.Round(z*scale) / scale
}

func clampZoom(z float64, limits ZoomLimits) float64 {
	if limits.Min > 0 && z < limits.Min {
		return limits.Min
	}
	if limits.Max > 0 && z > limits.Max {
		return limits.Max
	}
	return z
}
