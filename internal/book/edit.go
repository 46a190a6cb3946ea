package book

// AddText places a free text element on top of the page.
func (p *Page) AddText(id, content string, g Geometry, typo Typography) *TextElement {
	g.Rotation = NormalizeRotation(g.Rotation)
	t := &TextElement{
		Base:       Base{ID: id, Geometry: g, ZIndex: p.maxZIndex() + 1, Opacity: 1},
		Content:    content,
		Typography: typo,
	}
	p.Free = append(p.Free, t)
	return t
}

// AddPhoto places a free (unframed) photo element on top of the page.
func (p *Page) AddPhoto(id, src, photoID string, g Geometry) *PhotoElement {
	g.Rotation = NormalizeRotation(g.Rotation)
	ph := &PhotoElement{
		Base:    Base{ID: id, Geometry: g, ZIndex: p.maxZIndex() + 1, Opacity: 1},
		Src:     src,
		PhotoID: photoID,
		Crop:    NeutralCrop(),
	}
	p.Free = append(p.Free, ph)
	return ph
}

// SetGeometry overwrites the geometry of an element. Rotation is normalized.
func (p *Page) SetGeometry(elementID string, g Geometry) bool {
	e, ok := p.Element(elementID)
	if !ok {
		return false
	}
	g.Rotation = NormalizeRotation(g.Rotation)
	e.base().Geometry = g
	return true
}

// Rotate turns an element by delta degrees.
func (p *Page) Rotate(elementID string, delta float64) bool {
	e, ok := p.Element(elementID)
	if !ok {
		return false
	}
	b := e.base()
	b.Rotation = NormalizeRotation(b.Rotation + delta)
	return true
}

// BringToFront raises an element above every other element on the page.
func (p *Page) BringToFront(elementID string) bool {
	e, ok := p.Element(elementID)
	if !ok {
		return false
	}
	e.base().ZIndex = p.maxZIndex() + 1
	return true
}

// SetText changes the content of a text element.
func (p *Page) SetText(elementID, content string) bool {
	e, ok := p.Element(elementID)
	if !ok {
		return false
	}
	t, ok := e.(*TextElement)
	if !ok {
		return false
	}
	t.Content = content
	return true
}

// SetCrop changes the pan/zoom of a photo element. Scale below 1 is clamped to 1.
func (p *Page) SetCrop(elementID string, c Crop) bool {
	e, ok := p.Element(elementID)
	if !ok {
		return false
	}
	ph, ok := e.(*PhotoElement)
	if !ok {
		return false
	}
	if c.Scale < 1 {
		c.Scale = 1
	}
	ph.Crop = c
	return true
}
