// Package snap aligns dragged and resized elements to page and sibling lines.
package snap

import (
	"math"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
)

// Axis of a guide line. A vertical guide has a fixed x, a horizontal guide a fixed y.
type Axis string

const (
	Vertical   Axis = "vertical"
	Horizontal Axis = "horizontal"
)

// Guide is an alignment line shown while the element is snapped to it.
type Guide struct {
	Axis     Axis    `json:"axis"`
	Position float64 `json:"position"`
}

// Result is the snapped geometry plus the guides that caused it.
type Result struct {
	Geometry book.Geometry `json:"geometry"`
	Guides   []Guide       `json:"guides"`
}

// Handle names the resize handle being dragged: any combination of "n", "s", "e", "w".
type Handle string

var pageLines = []float64{0, 50, 100}

// Engine snaps geometries to alignment targets within Threshold percentage points.
type Engine struct {
	Threshold float64
}

func New(threshold float64) *Engine {
	return &Engine{Threshold: threshold}
}

func targets(siblings []book.Geometry) (xs, ys []float64) {
	xs = append(xs, pageLines...)
	ys = append(ys, pageLines...)
	for _, s := range siblings {
		xs = append(xs, s.X, s.X+s.Width, s.X+s.Width/2)
		ys = append(ys, s.Y, s.Y+s.Height, s.Y+s.Height/2)
	}
	return xs, ys
}

// closest finds the reference/target pair with the smallest distance. It returns
// the index of the winning reference, the target and whether it is within threshold.
func (e *Engine) closest(refs, lines []float64) (int, float64, bool) {
	best, bestRef, bestTarget := math.Inf(1), -1, 0.0
	for i, r := range refs {
		for _, t := range lines {
			if d := math.Abs(r - t); d < best {
				best, bestRef, bestTarget = d, i, t
			}
		}
	}
	return bestRef, bestTarget, bestRef >= 0 && best < e.Threshold
}

// Move snaps a moving element by its edges and midpoint on each axis. Size is preserved.
func (e *Engine) Move(proposed book.Geometry, siblings []book.Geometry) Result {
	xs, ys := targets(siblings)
	out := Result{Geometry: proposed}

	xOffsets := []float64{0, proposed.Width / 2, proposed.Width}
	xRefs := []float64{proposed.X, proposed.X + xOffsets[1], proposed.X + xOffsets[2]}
	if i, t, ok := e.closest(xRefs, xs); ok {
		out.Geometry.X = t - xOffsets[i]
		out.Guides = append(out.Guides, Guide{Axis: Vertical, Position: t})
	}

	yOffsets := []float64{0, proposed.Height / 2, proposed.Height}
	yRefs := []float64{proposed.Y, proposed.Y + yOffsets[1], proposed.Y + yOffsets[2]}
	if i, t, ok := e.closest(yRefs, ys); ok {
		out.Geometry.Y = t - yOffsets[i]
		out.Guides = append(out.Guides, Guide{Axis: Horizontal, Position: t})
	}

	return out
}

// Resize snaps only the edges that the handle moves; the opposite edges stay fixed.
func (e *Engine) Resize(proposed book.Geometry, handle Handle, siblings []book.Geometry) Result {
	xs, ys := targets(siblings)
	out := Result{Geometry: proposed}
	g := &out.Geometry
	h := string(handle)

	switch {
	case strings.Contains(h, "e"):
		if _, t, ok := e.closest([]float64{g.X + g.Width}, xs); ok && t > g.X {
			g.Width = t - g.X
			out.Guides = append(out.Guides, Guide{Axis: Vertical, Position: t})
		}
	case strings.Contains(h, "w"):
		right := g.X + g.Width
		if _, t, ok := e.closest([]float64{g.X}, xs); ok && t < right {
			g.X, g.Width = t, right-t
			out.Guides = append(out.Guides, Guide{Axis: Vertical, Position: t})
		}
	}

	switch {
	case strings.Contains(h, "s"):
		if _, t, ok := e.closest([]float64{g.Y + g.Height}, ys); ok && t > g.Y {
			g.Height = t - g.Y
			out.Guides = append(out.Guides, Guide{Axis: Horizontal, Position: t})
		}
	case strings.Contains(h, "n"):
		bottom := g.Y + g.Height
		if _, t, ok := e.closest([]float64{g.Y}, ys); ok && t < bottom {
			g.Y, g.Height = t, bottom-t
			out.Guides = append(out.Guides, Guide{Axis: Horizontal, Position: t})
		}
	}

	return out
}
