package book

import (
	"time"

	"github.com/google/uuid"
)

// Document is the persisted shape of a photobook.
type Document struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	BookFormat string     `json:"bookFormat"`
	Photos     []PhotoRef `json:"photos"`
	Pages      []*Page    `json:"pages"`
	Analysis   *Narrative `json:"analysis,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PhotoRef describes one photo that belongs to the book.
type PhotoRef struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Src     string  `json:"src"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Tier    string  `json:"tier"`
	Overall float64 `json:"overall"`
}

// Narrative is the optional story analysis produced by an AI provider.
// Photo indices refer to the sampled photos sent with the request.
type Narrative struct {
	Title          string         `json:"title"`
	Subtitle       string         `json:"subtitle,omitempty"`
	ColorPalette   []string       `json:"colorPalette"`
	Chapters       []Chapter      `json:"chapters"`
	PhotoAnalysis  *PhotoAnalysis `json:"photoAnalysis,omitempty"`
	SuggestedPages int            `json:"suggestedPages"`
}

type Chapter struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type PhotoAnalysis struct {
	HeroImages       []int `json:"heroImages"`
	SupportingImages []int `json:"supportingImages"`
	DetailImages     []int `json:"detailImages"`
}

// DefaultFormat is the only book format produced by the composer.
const DefaultFormat = "square-30"

// NewID returns a fresh random identifier for books, pages, prefills and elements.
func NewID() string {
	return uuid.NewString()
}

// PageIndex returns the position of the page with the given id, or -1.
func (d *Document) PageIndex(pageID string) int {
	for i, p := range d.Pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}
