package book

// Rect is a slot or frame rectangle in page percentages.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Prefill is a layout frame on a page. It keeps its geometry when its content
// changes and owns at most one photo element.
type Prefill struct {
	ID        string
	SlotIndex int
	Geometry  Rect
	Photo     *PhotoElement
}

// IsEmpty reports whether the frame currently shows no photo.
func (p *Prefill) IsEmpty() bool {
	return p.Photo == nil
}

// PhotoElementID returns the id of the owned element, or "" when empty.
func (p *Prefill) PhotoElementID() string {
	if p.Photo == nil {
		return ""
	}
	return p.Photo.ID
}

// Page is one page of a photobook. Free holds elements that are not owned by a
// prefill (text and unframed photos); slotted photos live inside Prefills.
type Page struct {
	ID         string
	Background string
	LayoutID   string
	Prefills   []*Prefill
	Free       []Element
}

// Elements returns every element on the page, slotted photos first in slot order,
// followed by free elements.
func (p *Page) Elements() []Element {
	out := make([]Element, 0, len(p.Prefills)+len(p.Free))
	for _, pf := range p.Prefills {
		if pf.Photo != nil {
			out = append(out, pf.Photo)
		}
	}
	return append(out, p.Free...)
}

// Element looks up an element by id.
func (p *Page) Element(id string) (Element, bool) {
	for _, pf := range p.Prefills {
		if pf.Photo != nil && pf.Photo.ID == id {
			return pf.Photo, true
		}
	}
	for _, e := range p.Free {
		if ElementID(e) == id {
			return e, true
		}
	}
	return nil, false
}

// Prefill looks up a prefill by id.
func (p *Page) Prefill(id string) (*Prefill, bool) {
	for _, pf := range p.Prefills {
		if pf.ID == id {
			return pf, true
		}
	}
	return nil, false
}

// PhotoCount returns the number of photo elements on the page.
func (p *Page) PhotoCount() int {
	n := 0
	for _, e := range p.Elements() {
		if _, ok := e.(*PhotoElement); ok {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	c := &Page{
		ID:         p.ID,
		Background: p.Background,
		LayoutID:   p.LayoutID,
	}
	if p.Prefills != nil {
		c.Prefills = make([]*Prefill, len(p.Prefills))
		for i, pf := range p.Prefills {
			cp := *pf
			if pf.Photo != nil {
				photo := *pf.Photo
				cp.Photo = &photo
			}
			c.Prefills[i] = &cp
		}
	}
	if p.Free != nil {
		c.Free = make([]Element, len(p.Free))
		for i, e := range p.Free {
			c.Free[i] = e.clone()
		}
	}
	return c
}

// ClonePages deep-copies a page slice.
func ClonePages(pages []*Page) []*Page {
	if pages == nil {
		return nil
	}
	out := make([]*Page, len(pages))
	for i, p := range pages {
		out[i] = p.Clone()
	}
	return out
}

// maxZIndex returns the highest zIndex on the page, or 0 for an empty page.
func (p *Page) maxZIndex() int {
	highest := 0
	for _, e := range p.Elements() {
		if z := e.base().ZIndex; z > highest {
			highest = z
		}
	}
	return highest
}
