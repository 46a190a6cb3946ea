package book

// DropIntoPrefill places a new photo element inside the prefill, sized to the
// prefill geometry. Dropping onto an occupied prefill replaces its content.
// Returns false when the prefill does not exist.
func (p *Page) DropIntoPrefill(src, photoID, prefillID, newElementID string) bool {
	pf, ok := p.Prefill(prefillID)
	if !ok {
		return false
	}
	if pf.Photo != nil {
		return p.ReplaceInPrefill(src, photoID, prefillID)
	}

	pf.Photo = &PhotoElement{
		Base: Base{
			ID: newElementID,
			Geometry: Geometry{
				X:      pf.Geometry.X,
				Y:      pf.Geometry.Y,
				Width:  pf.Geometry.Width,
				Height: pf.Geometry.Height,
			},
			ZIndex:  p.maxZIndex() + 1,
			Opacity: 1,
		},
		Src:       src,
		PhotoID:   photoID,
		Crop:      NeutralCrop(),
		PrefillID: pf.ID,
	}
	return true
}

// ReplaceInPrefill changes the source of the photo shown in the prefill and
// resets its crop. Geometry and element id are kept. Empty prefills are left alone.
func (p *Page) ReplaceInPrefill(src, photoID, prefillID string) bool {
	pf, ok := p.Prefill(prefillID)
	if !ok || pf.Photo == nil {
		return false
	}
	pf.Photo.Src = src
	pf.Photo.PhotoID = photoID
	pf.Photo.Crop = NeutralCrop()
	return true
}

// SwapInPrefills exchanges the content of two occupied prefills. Elements keep
// their ids and positions; only src, photo id and crop move.
func (p *Page) SwapInPrefills(prefillA, prefillB string) bool {
	if prefillA == prefillB {
		return false
	}
	a, okA := p.Prefill(prefillA)
	b, okB := p.Prefill(prefillB)
	if !okA || !okB || a.Photo == nil || b.Photo == nil {
		return false
	}
	a.Photo.Src, b.Photo.Src = b.Photo.Src, a.Photo.Src
	a.Photo.PhotoID, b.Photo.PhotoID = b.Photo.PhotoID, a.Photo.PhotoID
	a.Photo.Crop = NeutralCrop()
	b.Photo.Crop = NeutralCrop()
	return true
}

// RemoveFromPrefill drops the photo shown in the prefill. The frame stays.
func (p *Page) RemoveFromPrefill(prefillID string) bool {
	pf, ok := p.Prefill(prefillID)
	if !ok || pf.Photo == nil {
		return false
	}
	pf.Photo = nil
	return true
}

// DeleteElement removes an element from the page. A slotted photo empties its
// prefill instead; the prefill itself is never removed.
func (p *Page) DeleteElement(elementID string) bool {
	for _, pf := range p.Prefills {
		if pf.Photo != nil && pf.Photo.ID == elementID {
			pf.Photo = nil
			return true
		}
	}
	for i, e := range p.Free {
		if ElementID(e) == elementID {
			p.Free = append(p.Free[:i:i], p.Free[i+1:]...)
			return true
		}
	}
	return false
}

// ApplyLayout swaps the page frames for a new set of prefills. Photos that were
// slotted move into the new frames in slot order; photos without a frame left
// become free elements at their current geometry.
func (p *Page) ApplyLayout(layoutID string, prefills []*Prefill) {
	var photos []*PhotoElement
	for _, pf := range p.Prefills {
		if pf.Photo != nil {
			photos = append(photos, pf.Photo)
		}
	}

	for i, photo := range photos {
		if i >= len(prefills) {
			photo.PrefillID = ""
			p.Free = append(p.Free, photo)
			continue
		}
		pf := prefills[i]
		photo.PrefillID = pf.ID
		photo.X, photo.Y = pf.Geometry.X, pf.Geometry.Y
		photo.Width, photo.Height = pf.Geometry.Width, pf.Geometry.Height
		photo.Rotation = 0
		photo.Crop = NeutralCrop()
		pf.Photo = photo
	}

	p.LayoutID = layoutID
	p.Prefills = prefills
}
