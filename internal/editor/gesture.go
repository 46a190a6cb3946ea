package editor

import (
	"context"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/metrics"
	"github.com/kozaktomas/photobook/internal/snap"
)

// Mode is the kind of pointer manipulation.
type Mode string

const (
	ModeMove   Mode = "move"
	ModeResize Mode = "resize"
)

// minSize keeps resized elements visible.
const minSize = 1.0

type gesture struct {
	pageIndex int
	elementID string
	mode      Mode
	handle    snap.Handle
	start     book.Geometry
	changed   bool
}

// PointerDown starts manipulating an element. Only one element is active at a
// time; a gesture still in progress is ended first.
func (s *Session) PointerDown(ctx context.Context, pageIndex int, elementID string, mode Mode, handle snap.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endGesture(ctx)

	if pageIndex < 0 || pageIndex >= len(s.doc.Pages) {
		return false
	}
	e, ok := s.doc.Pages[pageIndex].Element(elementID)
	if !ok {
		return false
	}
	if mode != ModeResize {
		mode = ModeMove
	}
	s.gesture = &gesture{
		pageIndex: pageIndex,
		elementID: elementID,
		mode:      mode,
		handle:    handle,
		start:     book.ElementGeometry(e),
	}
	return true
}

// PointerMove places the active element at its start geometry plus the total
// pointer delta (page percent), snapped to page and sibling lines. The result
// is committed without a history entry.
func (s *Session) PointerMove(ctx context.Context, dx, dy float64) (snap.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.gesture
	if g == nil {
		return snap.Result{}, false
	}

	page := s.doc.Pages[g.pageIndex]
	var siblings []book.Geometry
	for _, e := range page.Elements() {
		if book.ElementID(e) != g.elementID {
			siblings = append(siblings, book.ElementGeometry(e))
		}
	}

	var res snap.Result
	if g.mode == ModeResize {
		res = s.snap.Resize(resized(g.start, g.handle, dx, dy), g.handle, siblings)
	} else {
		proposed := g.start
		proposed.X += dx
		proposed.Y += dy
		res = s.snap.Move(proposed, siblings)
	}

	s.update(ctx, g.pageIndex, func(p *book.Page) bool {
		e, ok := p.Element(g.elementID)
		if !ok || book.ElementGeometry(e) == res.Geometry {
			return false
		}
		return p.SetGeometry(g.elementID, res.Geometry)
	})
	return res, true
}

// resized applies a pointer delta to the edges named by handle. The opposite
// edges stay fixed.
func resized(start book.Geometry, handle snap.Handle, dx, dy float64) book.Geometry {
	g := start
	h := string(handle)

	switch {
	case strings.Contains(h, "e"):
		g.Width = max(start.Width+dx, minSize)
	case strings.Contains(h, "w"):
		right := start.X + start.Width
		g.X = min(start.X+dx, right-minSize)
		g.Width = right - g.X
	}

	switch {
	case strings.Contains(h, "s"):
		g.Height = max(start.Height+dy, minSize)
	case strings.Contains(h, "n"):
		bottom := start.Y + start.Height
		g.Y = min(start.Y+dy, bottom-minSize)
		g.Height = bottom - g.Y
	}
	return g
}

// PointerUp ends the gesture. A gesture that changed anything becomes exactly
// one history entry.
func (s *Session) PointerUp(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endGesture(ctx)
}

// PointerLeave ends the gesture the same way as PointerUp; the last geometry stands.
func (s *Session) PointerLeave(ctx context.Context) bool {
	return s.PointerUp(ctx)
}

func (s *Session) endGesture(ctx context.Context) bool {
	g := s.gesture
	if g == nil {
		return false
	}
	s.gesture = nil
	if g.changed {
		s.commit(ctx)
	}
	metrics.RecordEditIntent(string(g.mode), g.changed)
	return g.changed
}
