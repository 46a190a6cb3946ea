// Package photobook turns a set of photo files into a composed book document.
package photobook

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kozaktomas/photobook/internal/ai"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/compose"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/layout"
	"github.com/kozaktomas/photobook/internal/photo"
	"github.com/kozaktomas/photobook/internal/quality"
	"github.com/kozaktomas/photobook/internal/selection"
)

// Progress phases
const (
	PhaseAnalyzing = "analyzing"
	PhaseEnriching = "enriching"
	PhaseComposing = "composing"
)

// ProgressInfo contains progress information for callbacks
type ProgressInfo struct {
	Phase   string
	Current int
	Total   int
}

type Options struct {
	Title      string                  // used when the narrative has no title
	TitleHint  string                  // e.g. the source folder, used when Title is empty
	IncludeAll bool                    // keep clearly unusable photos
	Src        func(photo.File) string // public location of a photo, defaults to its path
	OnProgress func(ProgressInfo)      // Optional progress callback
}

type Result struct {
	Document   *book.Document
	Selected   []selection.SelectedPhoto
	Excluded   []photo.Record
	Duplicates int
	Unreadable int
	Enriched   bool
}

type Builder struct {
	cfg      *config.Config
	analyzer *quality.Analyzer
	provider ai.Provider
}

// New creates a builder. provider may be nil for heuristic-only books.
func New(cfg *config.Config, provider ai.Provider) *Builder {
	return &Builder{
		cfg:      cfg,
		analyzer: quality.NewAnalyzer(cfg.Analysis),
		provider: provider,
	}
}

// Build runs the whole pipeline. Unreadable photos and a failing AI provider
// degrade the result; only a cancelled context is an error.
func (b *Builder) Build(ctx context.Context, files []photo.File, opts Options) (*Result, error) {
	unique, duplicates := photo.Deduplicate(files)
	res := &Result{Duplicates: duplicates}

	recs := make([]photo.Record, len(unique))
	for i, f := range unique {
		rec, err := photo.Open(f, i)
		if err != nil {
			res.Unreadable++
			log.Printf("Warning: %v", err)
		}
		if opts.Src != nil {
			rec.Src = opts.Src(f)
		}
		recs[i] = rec
	}
	// Tiers keep the queue order, so every tier reads as a timeline.
	photo.SortChronological(recs)

	progress := func(phase string, current, total int) {
		if opts.OnProgress != nil {
			opts.OnProgress(ProgressInfo{Phase: phase, Current: current, Total: total})
		}
	}

	scores, err := b.analyzer.AnalyzeBatch(ctx, recs, func(done, total int) {
		progress(PhaseAnalyzing, done, total)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze photos: %w", err)
	}

	narrative, heroIDs := b.enrich(ctx, recs, opts, progress)
	res.Enriched = narrative != nil
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := make([]selection.Scored, len(recs))
	for i := range recs {
		scored[i] = selection.Scored{Record: recs[i], Score: scores[i]}
	}
	sel := selection.Select(scored, selection.Options{IncludeAll: opts.IncludeAll})
	res.Selected, res.Excluded = sel.Selected, sel.Excluded

	progress(PhaseComposing, 0, 1)
	composer := compose.New(b.cfg, layout.NewAssigner(b.cfg.Composer.Seed))
	pages := composer.Compose(sel.Selected, compose.Options{
		Title:     fallbackTitle(opts),
		Narrative: narrative,
		HeroIDs:   heroIDs,
	})
	progress(PhaseComposing, 1, 1)

	now := time.Now()
	res.Document = &book.Document{
		ID:         book.NewID(),
		Title:      documentTitle(opts, narrative),
		BookFormat: book.DefaultFormat,
		Photos:     photoRefs(sel.Selected),
		Pages:      pages,
		Analysis:   narrative,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return res, nil
}

// enrich sends a sample of thumbnails to the provider. Narrative hero indices
// refer to the sample and are mapped back to record ids.
func (b *Builder) enrich(ctx context.Context, recs []photo.Record, opts Options, progress func(string, int, int)) (*book.Narrative, []string) {
	if b.provider == nil || len(recs) == 0 {
		return nil, nil
	}

	sample := photo.Sample(len(recs), b.cfg.AI.SampleSize)
	var thumbs [][]byte
	var sampled []photo.Record
	for i, idx := range sample {
		if ctx.Err() != nil {
			return nil, nil
		}
		progress(PhaseEnriching, i, len(sample))
		img, err := recs[idx].Decode()
		if err != nil {
			continue
		}
		data, err := ai.Thumbnail(img, constants.ThumbnailMaxSize)
		if err != nil {
			log.Printf("Warning: failed to create thumbnail for %s: %v", recs[idx].Name, err)
			continue
		}
		thumbs = append(thumbs, data)
		sampled = append(sampled, recs[idx])
	}
	progress(PhaseEnriching, len(sample), len(sample))

	narrative := ai.Enrich(ctx, b.provider, ai.NarrativeRequest{
		Thumbnails:  thumbs,
		TotalPhotos: len(recs),
		TitleHint:   opts.TitleHint,
	}, b.cfg.AI.Timeout)
	if narrative == nil || narrative.PhotoAnalysis == nil {
		return narrative, nil
	}

	var heroIDs []string
	for _, i := range narrative.PhotoAnalysis.HeroImages {
		if i >= 0 && i < len(sampled) {
			heroIDs = append(heroIDs, sampled[i].ID)
		}
	}
	return narrative, heroIDs
}

func fallbackTitle(opts Options) string {
	switch {
	case opts.Title != "":
		return opts.Title
	case opts.TitleHint != "":
		return compose.TitleFromFolder(opts.TitleHint)
	default:
		return compose.DefaultTitle
	}
}

// documentTitle matches the title the composer puts on the cover.
func documentTitle(opts Options, n *book.Narrative) string {
	if n != nil && n.Title != "" {
		return n.Title
	}
	return fallbackTitle(opts)
}

func photoRefs(selected []selection.SelectedPhoto) []book.PhotoRef {
	refs := make([]book.PhotoRef, 0, len(selected))
	for _, sp := range selected {
		refs = append(refs, book.PhotoRef{
			ID:      sp.Record.ID,
			Name:    sp.Record.Name,
			Src:     sp.Record.Src,
			Width:   sp.Record.Width,
			Height:  sp.Record.Height,
			Tier:    string(sp.Tier),
			Overall: sp.Score.Overall,
		})
	}
	return refs
}
