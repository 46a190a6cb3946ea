package book

import (
	"encoding/json"
	"fmt"
)

const (
	typePhoto = "photo"
	typeText  = "text"
)

type photoJSON struct {
	Type string `json:"type"`
	*PhotoElement
}

type textJSON struct {
	Type string `json:"type"`
	*TextElement
}

type prefillJSON struct {
	ID        string `json:"id"`
	SlotIndex int    `json:"slotIndex"`
	Geometry  Rect   `json:"geometry"`
	IsEmpty   bool   `json:"isEmpty"`
	PhotoID   string `json:"photoId,omitempty"`
}

type pageJSON struct {
	ID         string            `json:"id"`
	Elements   []json.RawMessage `json:"elements"`
	Background string            `json:"background"`
	LayoutID   string            `json:"layoutId,omitempty"`
	Prefills   []prefillJSON     `json:"prefills"`
}

func marshalElement(e Element) (json.RawMessage, error) {
	switch v := e.(type) {
	case *PhotoElement:
		return json.Marshal(photoJSON{Type: typePhoto, PhotoElement: v})
	case *TextElement:
		return json.Marshal(textJSON{Type: typeText, TextElement: v})
	default:
		return nil, fmt.Errorf("unknown element type %T", e)
	}
}

func unmarshalElement(raw json.RawMessage) (Element, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case typePhoto:
		el := &PhotoElement{}
		if err := json.Unmarshal(raw, el); err != nil {
			return nil, err
		}
		return el, nil
	case typeText:
		el := &TextElement{}
		if err := json.Unmarshal(raw, el); err != nil {
			return nil, err
		}
		return el, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", probe.Type)
	}
}

// MarshalJSON flattens slotted photos into the element list and reports each
// prefill's occupancy.
func (p *Page) MarshalJSON() ([]byte, error) {
	out := pageJSON{
		ID:         p.ID,
		Background: p.Background,
		LayoutID:   p.LayoutID,
		Elements:   []json.RawMessage{},
		Prefills:   make([]prefillJSON, 0, len(p.Prefills)),
	}
	for _, e := range p.Elements() {
		raw, err := marshalElement(e)
		if err != nil {
			return nil, err
		}
		out.Elements = append(out.Elements, raw)
	}
	for _, pf := range p.Prefills {
		out.Prefills = append(out.Prefills, prefillJSON{
			ID:        pf.ID,
			SlotIndex: pf.SlotIndex,
			Geometry:  pf.Geometry,
			IsEmpty:   pf.IsEmpty(),
			PhotoID:   pf.PhotoElementID(),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds prefill ownership from the elements' prefillId links.
// A photo pointing at a missing or already occupied prefill becomes a free element.
func (p *Page) UnmarshalJSON(data []byte) error {
	var in pageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	page := Page{ID: in.ID, Background: in.Background, LayoutID: in.LayoutID}
	for _, pj := range in.Prefills {
		page.Prefills = append(page.Prefills, &Prefill{ID: pj.ID, SlotIndex: pj.SlotIndex, Geometry: pj.Geometry})
	}

	for i, raw := range in.Elements {
		e, err := unmarshalElement(raw)
		if err != nil {
			return fmt.Errorf("page %s element %d: %w", in.ID, i, err)
		}
		if ph, ok := e.(*PhotoElement); ok && ph.PrefillID != "" {
			if pf, found := page.Prefill(ph.PrefillID); found && pf.Photo == nil {
				pf.Photo = ph
				continue
			}
			ph.PrefillID = ""
		}
		page.Free = append(page.Free, e)
	}

	*p = page
	return nil
}
