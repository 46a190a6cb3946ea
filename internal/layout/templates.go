package layout

import "github.com/kozaktomas/photobook/internal/book"

// DefaultID is used whenever a layout id is unknown.
const DefaultID = "full"

// Template is a named set of photo slots in page percentages (0-100).
type Template struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Slots []book.Rect `json:"slots"`
}

// registry lists templates in display order. Slots use a 2% page margin and a
// 2% gutter unless the template is full bleed.
var registry = []Template{
	{ID: "full", Name: "Full bleed", Slots: []book.Rect{
		{X: 0, Y: 0, Width: 100, Height: 100},
	}},
	{ID: "classic-top", Name: "Classic, caption below", Slots: []book.Rect{
		{X: 8, Y: 6, Width: 84, Height: 64},
	}},
	{ID: "classic-bottom", Name: "Classic, caption above", Slots: []book.Rect{
		{X: 8, Y: 30, Width: 84, Height: 64},
	}},
	{ID: "split-v", Name: "Split vertical", Slots: []book.Rect{
		{X: 0, Y: 0, Width: 50, Height: 100},
		{X: 50, Y: 0, Width: 50, Height: 100},
	}},
	{ID: "split-h", Name: "Split horizontal", Slots: []book.Rect{
		{X: 0, Y: 0, Width: 100, Height: 50},
		{X: 0, Y: 50, Width: 100, Height: 50},
	}},
	{ID: "diagonal", Name: "Diagonal", Slots: []book.Rect{
		{X: 4, Y: 4, Width: 58, Height: 52},
		{X: 38, Y: 44, Width: 58, Height: 52},
	}},
	{ID: "two-horizontal", Name: "Two side by side", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 47, Height: 96},
		{X: 51, Y: 2, Width: 47, Height: 96},
	}},
	{ID: "two-vertical", Name: "Two stacked", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 96, Height: 47},
		{X: 2, Y: 51, Width: 96, Height: 47},
	}},
	{ID: "focus-left", Name: "Focus left", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 62, Height: 96},
		{X: 66, Y: 2, Width: 32, Height: 47},
		{X: 66, Y: 51, Width: 32, Height: 47},
	}},
	{ID: "focus-right", Name: "Focus right", Slots: []book.Rect{
		{X: 36, Y: 2, Width: 62, Height: 96},
		{X: 2, Y: 2, Width: 32, Height: 47},
		{X: 2, Y: 51, Width: 32, Height: 47},
	}},
	{ID: "three-col", Name: "Three columns", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 30, Height: 96},
		{X: 35, Y: 2, Width: 30, Height: 96},
		{X: 68, Y: 2, Width: 30, Height: 96},
	}},
	{ID: "three-row", Name: "Three rows", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 96, Height: 30},
		{X: 2, Y: 35, Width: 96, Height: 30},
		{X: 2, Y: 68, Width: 96, Height: 30},
	}},
	{ID: "grid-4", Name: "Grid of four", Slots: []book.Rect{
		{X: 2, Y: 2, Width: 47, Height: 47},
		{X: 51, Y: 2, Width: 47, Height: 47},
		{X: 2, Y: 51, Width: 47, Height: 47},
		{X: 51, Y: 51, Width: 47, Height: 47},
	}},
}

// Lookup returns the template with the given id, or the default template and false.
func Lookup(id string) (Template, bool) {
	for _, t := range registry {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range registry {
		if t.ID == DefaultID {
			return t, false
		}
	}
	return Template{}, false
}

// All returns every registered template in display order.
func All() []Template {
	out := make([]Template, len(registry))
	copy(out, registry)
	return out
}

// GeneratePrefills creates one empty prefill per slot of the layout. Unknown
// layout ids fall back to the default template.
func GeneratePrefills(layoutID string, newID func() string) []*book.Prefill {
	t, _ := Lookup(layoutID)
	prefills := make([]*book.Prefill, len(t.Slots))
	for i, slot := range t.Slots {
		prefills[i] = &book.Prefill{
			ID:        newID(),
			SlotIndex: i,
			Geometry:  slot,
		}
	}
	return prefills
}
