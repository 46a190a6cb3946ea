package editor

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/kozaktomas/photobook/internal/metrics"
)

// Kind names an edit intent.
type Kind string

const (
	KindDrop         Kind = "drop"
	KindReplace      Kind = "replace"
	KindSwap         Kind = "swap"
	KindRemove       Kind = "remove"
	KindDelete       Kind = "delete"
	KindAddText      Kind = "addText"
	KindSetText      Kind = "setText"
	KindApplyLayout  Kind = "applyLayout"
	KindRotate       Kind = "rotate"
	KindBringToFront Kind = "bringToFront"
	KindSetGeometry  Kind = "setGeometry"
	KindSetCrop      Kind = "setCrop"
)

// Intent is one edit request as sent by the rendering client.
type Intent struct {
	Kind      Kind           `json:"kind"`
	PageID    string         `json:"pageId"`
	PrefillID string         `json:"prefillId,omitempty"`
	TargetID  string         `json:"targetPrefillId,omitempty"` // second prefill of a swap
	ElementID string         `json:"elementId,omitempty"`
	Src       string         `json:"src,omitempty"`
	PhotoID   string         `json:"photoId,omitempty"`
	LayoutID  string         `json:"layoutId,omitempty"`
	Content   string         `json:"content,omitempty"`
	Degrees   float64        `json:"degrees,omitempty"`
	Geometry  *book.Geometry `json:"geometry,omitempty"`
	Crop      *book.Crop     `json:"crop,omitempty"`
}

// Outcome reports what an intent did. ElementID is set when one was created.
type Outcome struct {
	Changed   bool   `json:"changed"`
	ElementID string `json:"elementId,omitempty"`
}

// PageIndex resolves a page id, or -1.
func (s *Session) PageIndex(pageID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.PageIndex(pageID)
}

// Apply runs an intent. Unknown pages, prefills and elements make it a no-op;
// only an unknown kind is an error.
func (s *Session) Apply(ctx context.Context, in Intent) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.endGesture(ctx)
	index := s.doc.PageIndex(in.PageID)

	var out Outcome
	switch in.Kind {
	case KindDrop:
		id := s.newID()
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.DropIntoPrefill(in.Src, in.PhotoID, in.PrefillID, id)
		})
		if out.Changed {
			out.ElementID = s.prefillElement(index, in.PrefillID)
		}
	case KindReplace:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.ReplaceInPrefill(in.Src, in.PhotoID, in.PrefillID)
		})
	case KindSwap:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.SwapInPrefills(in.PrefillID, in.TargetID)
		})
	case KindRemove:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.RemoveFromPrefill(in.PrefillID)
		})
	case KindDelete:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.DeleteElement(in.ElementID)
		})
	case KindAddText:
		id := s.newID()
		g := book.Geometry{X: 20, Y: 45, Width: 60, Height: 10}
		if in.Geometry != nil {
			g = *in.Geometry
		}
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			p.AddText(id, in.Content, g, s.textStyle)
			return true
		})
		if out.Changed {
			out.ElementID = id
		}
	case KindSetText:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.SetText(in.ElementID, in.Content)
		})
	case KindApplyLayout:
		// Re-applying the current layout resets moved frames. Unknown ids get
		// the default template.
		t, _ := layout.Lookup(in.LayoutID)
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			if in.LayoutID == "" {
				return false
			}
			p.ApplyLayout(t.ID, layout.GeneratePrefills(t.ID, s.newID))
			return true
		})
	case KindRotate:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return in.Degrees != 0 && p.Rotate(in.ElementID, in.Degrees)
		})
	case KindBringToFront:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return p.BringToFront(in.ElementID)
		})
	case KindSetGeometry:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return in.Geometry != nil && p.SetGeometry(in.ElementID, *in.Geometry)
		})
	case KindSetCrop:
		out.Changed = s.update(ctx, index, func(p *book.Page) bool {
			return in.Crop != nil && p.SetCrop(in.ElementID, *in.Crop)
		})
	default:
		return Outcome{}, fmt.Errorf("unknown intent kind %q", in.Kind)
	}

	metrics.RecordEditIntent(string(in.Kind), out.Changed)
	return out, nil
}

func (s *Session) prefillElement(pageIndex int, prefillID string) string {
	if pf, ok := s.doc.Pages[pageIndex].Prefill(prefillID); ok {
		return pf.PhotoElementID()
	}
	return ""
}
