package photobook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"slices"
	"testing"
	"time"

	"github.com/kozaktomas/photobook/internal/ai"
	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/photo"
)

type fakeProvider struct {
	narrative *book.Narrative
	err       error
	requests  []ai.NarrativeRequest
}

func (f *fakeProvider) Name() string        { return "fake" }
func (f *fakeProvider) GetUsage() *ai.Usage { return &ai.Usage{} }
func (f *fakeProvider) ResetUsage()         {}

func (f *fakeProvider) AnalyzeNarrative(_ context.Context, req ai.NarrativeRequest) (*book.Narrative, error) {
	f.requests = append(f.requests, req)
	return f.narrative, f.err
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Composer.Seed = 7
	cfg.AI.Timeout = 5 * time.Second
	cfg.AI.SampleSize = 12
	return cfg
}

func pngBytes(t *testing.T, w, h int, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), shade, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testFiles(t *testing.T, n int) []photo.File {
	t.Helper()
	base := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	files := make([]photo.File, n)
	for i := range n {
		data := pngBytes(t, 48+i, 32, uint8(i*20))
		files[i] = photo.File{
			Name:    fmt.Sprintf("IMG_%04d.png", i),
			Size:    int64(len(data)),
			ModTime: base.Add(time.Duration(i) * time.Minute),
			Data:    data,
		}
	}
	return files
}

func placed(pages []*book.Page) map[string]int {
	seen := map[string]int{}
	for _, p := range pages {
		for _, e := range p.Elements() {
			if ph, ok := e.(*book.PhotoElement); ok {
				seen[ph.PhotoID]++
			}
		}
	}
	return seen
}

func TestBuild_TiersReadInCaptureOrder(t *testing.T) {
	files := testFiles(t, 9)
	slices.Reverse(files)

	res, err := New(testConfig(), nil).Build(context.Background(), files, Options{IncludeAll: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Selected) != len(files) {
		t.Fatalf("expected every photo selected, got %d", len(res.Selected))
	}
	for i := 1; i < len(res.Selected); i++ {
		prev, cur := res.Selected[i-1], res.Selected[i]
		if prev.Tier == cur.Tier && cur.Record.CapturedAt.Before(prev.Record.CapturedAt) {
			t.Errorf("%s (%s) comes after the later %s", cur.Record.Name, cur.Tier, prev.Record.Name)
		}
	}
}

func TestBuild_Heuristic(t *testing.T) {
	files := testFiles(t, 8)
	files = append(files, files[2], files[5])
	files = append(files, photo.File{Name: "broken.jpg", Size: 4, ModTime: time.Now(), Data: []byte("nope")})

	var phases []string
	res, err := New(testConfig(), nil).Build(context.Background(), files, Options{
		TitleHint: "/photos/summer_in-croatia",
		Src:       func(f photo.File) string { return "/media/" + f.Name },
		OnProgress: func(p ProgressInfo) {
			if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
				phases = append(phases, p.Phase)
			}
		},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if res.Duplicates != 2 {
		t.Errorf("expected 2 duplicates, got %d", res.Duplicates)
	}
	if res.Unreadable != 1 {
		t.Errorf("expected 1 unreadable photo, got %d", res.Unreadable)
	}
	if res.Enriched {
		t.Error("expected no enrichment without a provider")
	}

	doc := res.Document
	if doc.Title != "Summer In Croatia" {
		t.Errorf("expected title from folder, got %q", doc.Title)
	}
	if doc.BookFormat != book.DefaultFormat || doc.ID == "" {
		t.Errorf("unexpected document header: %+v", doc)
	}
	if len(doc.Photos) != len(res.Selected) {
		t.Errorf("expected %d photo refs, got %d", len(res.Selected), len(doc.Photos))
	}
	if len(res.Selected)+len(res.Excluded) != 9 {
		t.Errorf("expected 9 unique photos, got %d selected and %d excluded", len(res.Selected), len(res.Excluded))
	}

	seen := placed(doc.Pages)
	for _, ref := range doc.Photos {
		if seen[ref.ID] != 1 {
			t.Errorf("photo %s placed %d times", ref.Name, seen[ref.ID])
		}
		if ref.Src != "/media/"+ref.Name {
			t.Errorf("expected media src for %s, got %q", ref.Name, ref.Src)
		}
	}

	want := []string{PhaseAnalyzing, PhaseComposing}
	if fmt.Sprint(phases) != fmt.Sprint(want) {
		t.Errorf("expected phases %v, got %v", want, phases)
	}
}

func TestBuild_Enriched(t *testing.T) {
	provider := &fakeProvider{narrative: &book.Narrative{
		Title:         "Adriatic",
		Subtitle:      "2024",
		PhotoAnalysis: &book.PhotoAnalysis{HeroImages: []int{1}},
	}}

	res, err := New(testConfig(), provider).Build(context.Background(), testFiles(t, 5), Options{Title: "Ignored"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !res.Enriched {
		t.Fatal("expected enrichment")
	}
	if res.Document.Title != "Adriatic" {
		t.Errorf("expected narrative title, got %q", res.Document.Title)
	}
	if res.Document.Analysis == nil {
		t.Error("expected analysis stored on the document")
	}
	if len(provider.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(provider.requests))
	}
	req := provider.requests[0]
	if len(req.Thumbnails) != 5 || req.TotalPhotos != 5 {
		t.Errorf("expected 5 thumbnails of 5 photos, got %d of %d", len(req.Thumbnails), req.TotalPhotos)
	}
}

func TestBuild_EnrichmentFailureDegrades(t *testing.T) {
	provider := &fakeProvider{err: errors.New("service unavailable")}

	res, err := New(testConfig(), provider).Build(context.Background(), testFiles(t, 4), Options{Title: "Weekend"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Enriched {
		t.Error("expected heuristic mode after a provider failure")
	}
	if res.Document.Title != "Weekend" {
		t.Errorf("expected explicit title, got %q", res.Document.Title)
	}
	if len(res.Document.Pages) == 0 {
		t.Error("expected pages")
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(), nil).Build(ctx, testFiles(t, 3), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBuild_Empty(t *testing.T) {
	res, err := New(testConfig(), &fakeProvider{}).Build(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Document.Title != "My Photobook" {
		t.Errorf("expected default title, got %q", res.Document.Title)
	}
	if len(res.Document.Pages) == 0 {
		t.Error("expected padded pages for an empty book")
	}
}

func TestEnrich_MapsHeroIndicesToSampledRecords(t *testing.T) {
	files := testFiles(t, 3)
	files = append([]photo.File{{Name: "broken.jpg", Data: []byte("nope")}}, files...)

	recs := make([]photo.Record, len(files))
	for i, f := range files {
		recs[i], _ = photo.Open(f, i)
	}

	provider := &fakeProvider{narrative: &book.Narrative{
		PhotoAnalysis: &book.PhotoAnalysis{HeroImages: []int{0, 2, 9, -1}},
	}}
	b := New(testConfig(), provider)

	_, heroes := b.enrich(context.Background(), recs, Options{}, func(string, int, int) {})

	// the broken photo is not part of the sample, so sample index 0 is recs[1]
	want := []string{recs[1].ID, recs[3].ID}
	if fmt.Sprint(heroes) != fmt.Sprint(want) {
		t.Errorf("expected heroes %v, got %v", want, heroes)
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		n    *book.Narrative
		want string
	}{
		{"narrative wins", Options{Title: "Mine"}, &book.Narrative{Title: "Story"}, "Story"},
		{"explicit title", Options{Title: "Mine", TitleHint: "trip"}, &book.Narrative{}, "Mine"},
		{"folder hint", Options{TitleHint: "/x/road_trip"}, nil, "Road Trip"},
		{"default", Options{}, nil, "My Photobook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := documentTitle(tt.opts, tt.n); got != tt.want {
				t.Errorf("documentTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
