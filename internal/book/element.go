package book

import "math"

// Geometry positions an element in page percentages (0-100). Rotation is in degrees.
type Geometry struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// Crop is the pan/zoom transform of a photo inside its frame.
type Crop struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	Scale   float64 `json:"scale"`
}

// NeutralCrop shows the photo centered at its natural fill scale.
func NeutralCrop() Crop {
	return Crop{Scale: 1}
}

// Typography describes how a text element is rendered.
type Typography struct {
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	Color      string  `json:"color"`
	Align      string  `json:"align"`
	Weight     string  `json:"weight"`
}

// Base holds the fields every element kind shares.
type Base struct {
	ID string `json:"id"`
	Geometry
	ZIndex  int     `json:"zIndex"`
	Opacity float64 `json:"opacity"`
}

// Element is a placed item on a page. It is implemented by *PhotoElement and
// *TextElement only; switch on the concrete type to handle each kind.
type Element interface {
	base() *Base
	clone() Element
}

// PhotoElement shows a photo. PrefillID is set while the element is owned by a prefill.
type PhotoElement struct {
	Base
	Src       string `json:"src"`
	PhotoID   string `json:"photoId,omitempty"`
	Crop      Crop   `json:"crop"`
	PrefillID string `json:"prefillId,omitempty"`
}

// TextElement shows a caption, title or free text.
type TextElement struct {
	Base
	Content    string     `json:"content"`
	Typography Typography `json:"typography"`
}

func (p *PhotoElement) base() *Base { return &p.Base }
func (t *TextElement) base() *Base  { return &t.Base }

func (p *PhotoElement) clone() Element {
	c := *p
	return &c
}

func (t *TextElement) clone() Element {
	c := *t
	return &c
}

// ElementID returns the id of any element.
func ElementID(e Element) string {
	return e.base().ID
}

// ElementGeometry returns the geometry of any element.
func ElementGeometry(e Element) Geometry {
	return e.base().Geometry
}

// NormalizeRotation maps any angle to [0, 360).
func NormalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r == 360 {
		return 0
	}
	return r
}
