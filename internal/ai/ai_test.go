package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
)

// Helper functions for creating test images

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(img image.Image) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func testRequest(n int) NarrativeRequest {
	req := NarrativeRequest{TotalPhotos: 40, TitleHint: "summer-2024"}
	for range n {
		req.Thumbnails = append(req.Thumbnails, encodeJPEG(createTestImage(64, 48, color.RGBA{R: 200, G: 180, B: 150, A: 255})))
	}
	return req
}

const validNarrative = `{
  "title": "  Summer by the Sea ",
  "subtitle": "Two weeks in Croatia",
  "colorPalette": ["#f4e9d8", "blue", "#A1B2C3", "#12345"],
  "chapters": [{"title": "Arrival", "description": "First days"}],
  "photoAnalysis": {"heroImages": [0, 7, 0], "supportingImages": [1], "detailImages": [-1]},
  "suggestedPages": -4
}`

// --- Thumbnail tests ---

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name           string
		img            image.Image
		maxSize        int
		expectedWidth  int
		expectedHeight int
	}{
		{"no resize needed", createTestImage(100, 100, color.White), 200, 100, 100},
		{"landscape", createTestImage(2000, 1000, color.White), 500, 500, 250},
		{"portrait", createTestImage(1000, 2000, color.White), 500, 250, 500},
		{"square", createTestImage(1000, 1000, color.White), 300, 300, 300},
		{"exactly max size", createTestImage(512, 512, color.White), 512, 512, 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Thumbnail(tt.img, tt.maxSize)
			if err != nil {
				t.Fatalf("Thumbnail failed: %v", err)
			}

			img, format, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("failed to decode result: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("expected jpeg format, got %s", format)
			}
			if img.Bounds().Dx() != tt.expectedWidth || img.Bounds().Dy() != tt.expectedHeight {
				t.Errorf("expected %dx%d, got %dx%d", tt.expectedWidth, tt.expectedHeight, img.Bounds().Dx(), img.Bounds().Dy())
			}
		})
	}
}

func TestThumbnail_ExtremeAspectKeepsOnePixel(t *testing.T) {
	data, err := Thumbnail(createTestImage(2000, 2, color.White), 100)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 1 {
		t.Errorf("expected 100x1, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

// --- Parsing tests ---

func TestParseNarrative(t *testing.T) {
	n, err := parseNarrative("Here you go:\n"+validNarrative+"\nEnjoy!", 3)
	if err != nil {
		t.Fatalf("parseNarrative failed: %v", err)
	}

	if n.Title != "Summer by the Sea" {
		t.Errorf("expected trimmed title, got %q", n.Title)
	}
	if got := strings.Join(n.ColorPalette, ","); got != "#F4E9D8,#A1B2C3" {
		t.Errorf("expected only valid uppercase colours, got %s", got)
	}
	if len(n.Chapters) != 1 || n.Chapters[0].Title != "Arrival" {
		t.Errorf("unexpected chapters: %+v", n.Chapters)
	}
	if got := n.PhotoAnalysis.HeroImages; len(got) != 1 || got[0] != 0 {
		t.Errorf("expected hero indices [0], got %v", got)
	}
	if len(n.PhotoAnalysis.DetailImages) != 0 {
		t.Errorf("expected negative index dropped, got %v", n.PhotoAnalysis.DetailImages)
	}
	if n.SuggestedPages != 0 {
		t.Errorf("expected negative page count clamped to 0, got %d", n.SuggestedPages)
	}
}

func TestParseNarrative_Invalid(t *testing.T) {
	for _, content := range []string{"", "no json here", `{"title": "broken`, `{"title": 5}`} {
		if _, err := parseNarrative(content, 3); err == nil {
			t.Errorf("expected error for %q", content)
		}
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"prefix {\"a\":{\"b\":2}} suffix", `{"a":{"b":2}}`},
		{"no braces", "no braces"},
		{`text {"a":`, `{"a":`},
	}
	for _, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildNarrativeContent(t *testing.T) {
	content := buildNarrativeContent(testRequest(3))
	for _, want := range []string{"40 photos", "3 thumbnails", "0 to 2", `"summer-2024"`} {
		if !strings.Contains(content, want) {
			t.Errorf("expected content to mention %s, got %q", want, content)
		}
	}

	if strings.Contains(buildNarrativeContent(NarrativeRequest{TotalPhotos: 1}), "folder") {
		t.Error("expected no folder line without a title hint")
	}
}

func TestUsage_Add(t *testing.T) {
	var u Usage
	u.add(1_000_000, 500_000, RequestPricing{Input: 0.4, Output: 1.6})
	u.add(10, 5, RequestPricing{})

	if u.InputTokens != 1_000_010 || u.OutputTokens != 500_005 {
		t.Errorf("unexpected token counts %d/%d", u.InputTokens, u.OutputTokens)
	}
	if u.TotalCost < 1.1999 || u.TotalCost > 1.2001 {
		t.Errorf("expected cost 1.2, got %f", u.TotalCost)
	}
}

// --- HTTP provider tests ---

func TestOllamaProvider_RetriesOnInvalidJSON(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		content := "sorry, not json"
		if calls.Add(1) > 1 {
			content = validNarrative
			if len(req.Messages) != 4 || req.Messages[2].Role != "assistant" {
				t.Errorf("expected retry to carry the previous answer, got %d messages", len(req.Messages))
			}
		} else if len(req.Messages[1].Images) != 2 {
			t.Errorf("expected 2 images, got %d", len(req.Messages[1].Images))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]string{"role": "assistant", "content": content},
			"done":              true,
			"prompt_eval_count": 100,
			"eval_count":        20,
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL+"/", "test-model")
	n, err := p.AnalyzeNarrative(context.Background(), testRequest(2))
	if err != nil {
		t.Fatalf("AnalyzeNarrative failed: %v", err)
	}

	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if n.Title != "Summer by the Sea" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if p.GetUsage().InputTokens != 200 || p.GetUsage().OutputTokens != 40 {
		t.Errorf("unexpected usage %+v", *p.GetUsage())
	}

	p.ResetUsage()
	if p.GetUsage().InputTokens != 0 {
		t.Error("expected usage reset")
	}
}

func TestOllamaProvider_ConcurrentRequestsShareUsage(t *testing.T) {
	req := testRequest(1)
	want := base64.StdEncoding.EncodeToString(req.Thumbnails[0])

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(in.Messages) < 2 || len(in.Messages[1].Images) != 1 || in.Messages[1].Images[0] != want {
			t.Error("expected the thumbnail to be sent unchanged")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"message":           map[string]string{"role": "assistant", "content": validNarrative},
			"prompt_eval_count": 10,
			"eval_count":        2,
		})
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "test-model")
	const workers = 8
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.AnalyzeNarrative(context.Background(), req); err != nil {
				t.Errorf("AnalyzeNarrative failed: %v", err)
			}
			_ = p.GetUsage()
		}()
	}
	wg.Wait()

	if got := p.GetUsage(); got.InputTokens != workers*10 || got.OutputTokens != workers*2 {
		t.Errorf("unexpected usage %+v", *got)
	}
}

func TestOllamaProvider_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "still not json"},
		})
	}))
	defer server.Close()

	_, err := NewOllamaProvider(server.URL, "").AnalyzeNarrative(context.Background(), testRequest(1))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != maxRetries {
		t.Errorf("expected %d calls, got %d", maxRetries, calls.Load())
	}
}

func TestOllamaProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllamaProvider(server.URL, "missing").AnalyzeNarrative(context.Background(), testRequest(1))
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("expected status error, got %v", err)
	}
}

func TestLlamaCppProvider_AnalyzeNarrative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		var parts []llamaCppContentPart
		if err := json.Unmarshal(req.Messages[1].Content, &parts); err != nil {
			t.Errorf("expected content parts: %v", err)
		}
		if len(parts) != 4 || parts[1].Type != "image_url" || !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("unexpected parts %+v", parts)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": validNarrative}}},
			"usage":   map[string]int{"prompt_tokens": 50, "completion_tokens": 10},
		})
	}))
	defer server.Close()

	p, err := NewLlamaCppProvider(server.URL, "")
	if err != nil {
		t.Fatalf("NewLlamaCppProvider failed: %v", err)
	}
	if p.Name() != defaultLlamaCppModel {
		t.Errorf("expected default model, got %s", p.Name())
	}

	n, err := p.AnalyzeNarrative(context.Background(), testRequest(3))
	if err != nil {
		t.Fatalf("AnalyzeNarrative failed: %v", err)
	}
	if len(n.PhotoAnalysis.SupportingImages) != 1 {
		t.Errorf("unexpected analysis %+v", n.PhotoAnalysis)
	}
	if p.GetUsage().InputTokens != 50 {
		t.Errorf("unexpected usage %+v", *p.GetUsage())
	}
}

func TestNewLlamaCppProvider_InvalidURL(t *testing.T) {
	for _, u := range []string{"ftp://localhost", "http://", "://bad"} {
		if _, err := NewLlamaCppProvider(u, ""); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}

func TestConverse(t *testing.T) {
	ask := func(answers ...string) (askFunc, *[]int) {
		var seen []int
		return func(_ context.Context, corrections []correction) (reply, error) {
			seen = append(seen, len(corrections))
			return reply{text: answers[len(seen)-1], inputTokens: 10, outputTokens: 1}, nil
		}, &seen
	}

	t.Run("corrections accumulate", func(t *testing.T) {
		f, seen := ask("nope", "{broken", validNarrative)
		var meter usageMeter
		n, err := converse(context.Background(), "test", f, &meter, RequestPricing{Input: 1_000_000}, 8)
		if err != nil {
			t.Fatalf("converse failed: %v", err)
		}
		if n.Title != "Summer by the Sea" {
			t.Errorf("unexpected title %q", n.Title)
		}
		if got := *seen; len(got) != 3 || got[0] != 0 || got[2] != 2 {
			t.Errorf("unexpected correction counts %v", got)
		}
		if usage := meter.snapshot(); usage.InputTokens != 30 || usage.TotalCost < 29.99 || usage.TotalCost > 30.01 {
			t.Errorf("unexpected usage %+v", *usage)
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		f, _ := ask("")
		_, err := converse(context.Background(), "test", f, &usageMeter{}, RequestPricing{}, 1)
		if err == nil || !strings.Contains(err.Error(), "no response from test") {
			t.Errorf("expected empty answer error, got %v", err)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		failing := func(context.Context, []correction) (reply, error) { return reply{}, errors.New("boom") }
		_, err := converse(context.Background(), "test", failing, &usageMeter{}, RequestPricing{}, 1)
		if err == nil || err.Error() != "test API error: boom" {
			t.Errorf("unexpected error %v", err)
		}
	})
}

func TestOpenAIProvider_AnalyzeNarrative(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		content := "not json"
		if calls.Add(1) > 1 {
			content = validNarrative
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   chatModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
			"usage": map[string]int{"prompt_tokens": 1000, "completion_tokens": 100, "total_tokens": 1100},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", RequestPricing{Input: 0.4, Output: 1.6},
		option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	n, err := p.AnalyzeNarrative(context.Background(), testRequest(2))
	if err != nil {
		t.Fatalf("AnalyzeNarrative failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if n.Subtitle != "Two weeks in Croatia" {
		t.Errorf("unexpected subtitle %q", n.Subtitle)
	}
	if p.GetUsage().InputTokens != 2000 || p.GetUsage().TotalCost <= 0 {
		t.Errorf("unexpected usage %+v", *p.GetUsage())
	}
}

// --- Provider selection and enrichment ---

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		ai      config.AIConfig
		wantNil bool
		wantErr bool
	}{
		{"disabled", config.AIConfig{}, true, false},
		{"ollama", config.AIConfig{Provider: "ollama"}, false, false},
		{"llamacpp", config.AIConfig{Provider: "llamacpp", LlamaCppURL: "http://gpu:8080"}, false, false},
		{"llamacpp bad url", config.AIConfig{Provider: "llamacpp", LlamaCppURL: "ftp://gpu"}, true, true},
		{"openai without token", config.AIConfig{Provider: "openai"}, true, true},
		{"openai", config.AIConfig{Provider: "openai", OpenAIToken: "sk-test"}, false, false},
		{"gemini without key", config.AIConfig{Provider: "gemini"}, true, true},
		{"unknown", config.AIConfig{Provider: "clippy"}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), &config.Config{AI: tt.ai})
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if (p == nil) != tt.wantNil {
				t.Errorf("expected nil provider %v, got %v", tt.wantNil, p)
			}
		})
	}
}

type fakeProvider struct {
	narrative *book.Narrative
	err       error
	block     bool
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) GetUsage() *Usage { return &Usage{} }
func (f *fakeProvider) ResetUsage()      {}

func (f *fakeProvider) AnalyzeNarrative(ctx context.Context, _ NarrativeRequest) (*book.Narrative, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.narrative, f.err
}

func TestEnrich(t *testing.T) {
	want := &book.Narrative{Title: "Trip"}

	tests := []struct {
		name     string
		provider Provider
		req      NarrativeRequest
		want     *book.Narrative
	}{
		{"no provider", nil, testRequest(1), nil},
		{"empty sample", &fakeProvider{narrative: want}, NarrativeRequest{}, nil},
		{"success", &fakeProvider{narrative: want}, testRequest(1), want},
		{"failure", &fakeProvider{err: errors.New("quota exceeded")}, testRequest(1), nil},
		{"timeout", &fakeProvider{block: true}, testRequest(1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(context.Background(), tt.provider, tt.req, 20*time.Millisecond)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
