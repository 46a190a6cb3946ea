// Package compose paginates selected photos into a book: page roles, photos per
// page, layouts, backgrounds and captions.
package compose

import (
	"math"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/kozaktomas/photobook/internal/metrics"
	"github.com/kozaktomas/photobook/internal/quality"
	"github.com/kozaktomas/photobook/internal/selection"
)

// Options carries the per-book inputs of a composition.
type Options struct {
	Title     string          // used when the narrative has no title
	Narrative *book.Narrative // optional enrichment
	HeroIDs   []string        // record ids the narrative picked as heroes
}

// Composer builds pages. It is not safe for concurrent use because the layout
// assigner keeps random state.
type Composer struct {
	cfg      *config.Config
	assigner *layout.Assigner
	newID    func() string
}

func New(cfg *config.Config, assigner *layout.Assigner) *Composer {
	return &Composer{cfg: cfg, assigner: assigner, newID: book.NewID}
}

// TargetPageCount returns how many pages a book of n photos should have.
// Thin books get a generous minimum; larger ones taper towards one page per
// 2.5 to 3.5 photos.
func TargetPageCount(n int) int {
	var pages int
	switch {
	case n <= 5:
		pages = constants.MinPages
	case n <= 20:
		pages = int(math.Ceil(float64(n)/2.5)) + 4
	case n <= 60:
		pages = int(math.Ceil(float64(n)/3)) + 5
	default:
		pages = int(math.Ceil(float64(n)/3.5)) + 8
	}
	return min(pages, constants.MaxPages)
}

func roleFor(pageIndex, remaining int) layout.Role {
	switch {
	case pageIndex == 0:
		return layout.RoleCover
	case pageIndex == 1:
		return layout.RoleOpening
	case remaining <= constants.ClosingPhotoThreshold:
		return layout.RoleClosing
	default:
		return layout.RoleContent
	}
}

// photosPerPage decides how many photos the next page takes. Content pages
// follow the photos-to-pages ratio but alternate between two and three photos
// so the book does not settle into a flat rhythm.
func photosPerPage(role layout.Role, remaining, pagesLeft, contentSeq int) int {
	switch role {
	case layout.RoleCover, layout.RoleOpening:
		return min(remaining, 1)
	case layout.RoleClosing:
		return min(remaining, 2)
	}

	ratio := float64(remaining) / float64(max(pagesLeft, 1))
	var n int
	switch {
	case ratio < 1.5:
		n = 1
	case ratio < 2.5:
		n = 2
		if contentSeq%3 == 2 {
			n = 3
		}
	default:
		n = 3
		if contentSeq%4 == 3 {
			n = 2
		}
	}
	// Catch up when the rest would not fit the remaining pages at three per
	// page; the closing tail needs one page more than that.
	if remaining-n > 3*(pagesLeft-1)-1 {
		n = 3
	}
	return min(n, remaining)
}

// Compose lays out every selected photo, in order, across the book. Every
// photo ends up in exactly one page; pages beyond the last photo get empty
// frames ready for drops.
func (c *Composer) Compose(selected []selection.SelectedPhoto, opts Options) []*book.Page {
	target := TargetPageCount(len(selected))
	if c.cfg.Composer.MaxPages > 0 {
		target = min(target, max(c.cfg.Composer.MaxPages, constants.MinPages))
	}

	heroes := make(map[string]bool, len(opts.HeroIDs))
	for _, id := range opts.HeroIDs {
		heroes[id] = true
	}
	enriched := opts.Narrative != nil

	var pages []*book.Page
	prev := ""
	contentSeq := 0

	for next := 0; next < len(selected); {
		index := len(pages)
		remaining := len(selected) - next
		role := roleFor(index, remaining)
		count := photosPerPage(role, remaining, target-index, contentSeq)
		if role == layout.RoleContent {
			contentSeq++
		}

		batch := selected[next : next+count]
		page := c.newPage(role, batch, prev, hasHero(batch, next, heroes, enriched), opts.Narrative)
		for i, sp := range batch {
			if i < len(page.Prefills) {
				page.DropIntoPrefill(sp.Record.Src, sp.Record.ID, page.Prefills[i].ID, c.newID())
				continue
			}
			// Templates always have enough slots for their photo count; keep the photo anyway.
			page.AddPhoto(c.newID(), sp.Record.Src, sp.Record.ID, book.Geometry{X: 10, Y: 10, Width: 30, Height: 30})
		}

		pages = append(pages, page)
		prev = page.LayoutID
		next += count
	}

	for len(pages) < target {
		role := roleFor(len(pages), len(selected))
		if len(pages) == target-1 && len(pages) > 1 {
			role = layout.RoleClosing
		} else if role == layout.RoleClosing {
			role = layout.RoleContent
		}
		page := c.newPage(role, nil, prev, false, opts.Narrative)
		pages = append(pages, page)
		prev = page.LayoutID
	}

	c.addCoverTitle(pages, opts)
	c.addChapterCaptions(pages, opts.Narrative)

	metrics.RecordBookComposed(len(pages))
	return pages
}

// hasHero reports whether a page holding batch (starting at queue position
// start) features a hero photo. The positional fallback only applies when no
// enrichment is available.
func hasHero(batch []selection.SelectedPhoto, start int, heroes map[string]bool, enriched bool) bool {
	for i, sp := range batch {
		if sp.Tier == selection.TierHero || heroes[sp.Record.ID] {
			return true
		}
		if !enriched && (start+i)%constants.HeroPositionInterval == 0 {
			return true
		}
	}
	return false
}

// newPage creates a page for batch. An empty batch gets a single-frame layout.
func (c *Composer) newPage(role layout.Role, batch []selection.SelectedPhoto, prev string, hero bool, n *book.Narrative) *book.Page {
	layoutID := c.assigner.Select(max(len(batch), 1), role, prev, hero)
	return &book.Page{
		ID:         c.newID(),
		Background: c.background(role, batch, n),
		LayoutID:   layoutID,
		Prefills:   layout.GeneratePrefills(layoutID, c.newID),
	}
}

// background picks the palette colour assigned to the role, unless it is too
// dark for a page. Without a narrative the page borrows the first light
// dominant colour of its own photos. The configured neutrals come last.
func (c *Composer) background(role layout.Role, batch []selection.SelectedPhoto, n *book.Narrative) string {
	if n != nil && len(n.ColorPalette) > 0 {
		var slot int
		switch role {
		case layout.RoleCover:
			slot = 0
		case layout.RoleOpening:
			slot = 1
		case layout.RoleContent:
			slot = 2
		case layout.RoleClosing:
			slot = 3
		}
		color := n.ColorPalette[slot%len(n.ColorPalette)]
		if !quality.IsNearBlack(color) {
			return color
		}
	}
	if n == nil {
		for _, sp := range batch {
			if color, ok := quality.LightColor(sp.Score.DominantColors); ok {
				return color
			}
		}
	}
	return c.cfg.Background(string(role))
}

func (c *Composer) typography(name string) book.Typography {
	s := c.cfg.Defaults.Typography[name]
	return book.Typography{
		FontFamily: s.FontFamily,
		FontSize:   s.FontSize,
		Color:      s.Color,
		Align:      s.Align,
		Weight:     s.Weight,
	}
}

func (c *Composer) addCoverTitle(pages []*book.Page, opts Options) {
	if len(pages) == 0 {
		return
	}
	title := opts.Title
	var subtitle string
	if opts.Narrative != nil {
		if opts.Narrative.Title != "" {
			title = opts.Narrative.Title
		}
		subtitle = opts.Narrative.Subtitle
	}
	if title == "" {
		title = DefaultTitle
	}

	cover := pages[0]
	cover.AddText(c.newID(), title, book.Geometry{X: 10, Y: 68, Width: 80, Height: 12}, c.typography("title"))
	if subtitle != "" {
		cover.AddText(c.newID(), subtitle, book.Geometry{X: 15, Y: 81, Width: 70, Height: 6}, c.typography("subtitle"))
	}
}

// addChapterCaptions spreads chapter titles evenly over the content pages.
// Chapters beyond the number of content pages are dropped.
func (c *Composer) addChapterCaptions(pages []*book.Page, n *book.Narrative) {
	if n == nil || len(n.Chapters) == 0 {
		return
	}

	var content []*book.Page
	for i, p := range pages {
		if i >= 2 && p.PhotoCount() > 0 {
			content = append(content, p)
		}
	}
	if len(content) == 0 {
		return
	}

	chapters := n.Chapters[:min(len(n.Chapters), len(content))]
	for i, ch := range chapters {
		if ch.Title == "" {
			continue
		}
		page := content[i*len(content)/len(chapters)]
		page.AddText(c.newID(), ch.Title, book.Geometry{X: 10, Y: 92, Width: 80, Height: 5}, c.typography("caption"))
	}
}
