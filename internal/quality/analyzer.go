package quality

import (
	"context"
	"image"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/constants"
	"github.com/kozaktomas/photobook/internal/metrics"
	"github.com/kozaktomas/photobook/internal/photo"
)

// Analyzer scores photos. It is safe for concurrent use.
type Analyzer struct {
	maxEdge   int
	chunkSize int
	workers   int
}

func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	a := &Analyzer{maxEdge: cfg.MaxEdge, chunkSize: cfg.ChunkSize, workers: cfg.Workers}
	if a.maxEdge <= 0 {
		a.maxEdge = constants.AnalysisMaxEdge
	}
	if a.chunkSize <= 0 {
		a.chunkSize = constants.AnalysisChunkSize
	}
	if a.workers <= 0 {
		a.workers = constants.DefaultConcurrency
	}
	return a
}

// AnalyzeImage scores an already decoded image. originalWidth is the width
// before any downscaling and decides the resolution bonus.
func (a *Analyzer) AnalyzeImage(img image.Image, originalWidth int) Score {
	b := img.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return Neutral(1)
	}

	g := toLuma(downscale(img, a.maxEdge))
	s, l, c := sharpness(g), lighting(g), composition(g)

	colors, err := dominantColors(img, constants.DominantColorCount)
	if err != nil {
		log.Printf("Warning: dominant colors: %v", err)
	}

	return Score{
		Overall:        Overall(s, l, c, originalWidth),
		Sharpness:      s,
		Lighting:       l,
		Composition:    c,
		SubjectCenter:  subjectCenter(g),
		AspectRatio:    float64(b.Dx()) / float64(b.Dy()),
		DominantColors: colors,
	}
}

// Analyze decodes and scores one photo. Any failure yields the neutral score.
func (a *Analyzer) Analyze(rec photo.Record) Score {
	start := time.Now()
	score := a.analyze(rec)
	metrics.RecordPhotoAnalyzed(score.Fallback, time.Since(start).Seconds())
	return score
}

func (a *Analyzer) analyze(rec photo.Record) (score Score) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: analysis of %s panicked: %v", rec.Name, r)
			score = Neutral(rec.AspectRatio())
		}
	}()

	img, err := rec.Decode()
	if err != nil {
		log.Printf("Warning: %v, using neutral score", err)
		return Neutral(rec.AspectRatio())
	}
	width := rec.Width
	if width == 0 {
		width = img.Bounds().Dx()
	}
	return a.AnalyzeImage(img, width)
}

// AnalyzeBatch scores records in chunks, yielding between chunks. The result
// is index-aligned with recs. It stops early only when ctx is cancelled.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, recs []photo.Record, onProgress func(done, total int)) ([]Score, error) {
	scores := make([]Score, len(recs))

	for start := 0; start < len(recs); start += a.chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+a.chunkSize, len(recs))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.workers)
		for i := start; i < end; i++ {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				scores[i] = a.Analyze(recs[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if onProgress != nil {
			onProgress(end, len(recs))
		}
		runtime.Gosched()
	}

	return scores, nil
}
