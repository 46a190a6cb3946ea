package ai

import (
	"context"
	"sync"

	"github.com/kozaktomas/photobook/internal/book"
)

// NarrativeRequest is a sample of a photo collection sent for story analysis.
type NarrativeRequest struct {
	Thumbnails  [][]byte // JPEG thumbnails, in sample order
	TotalPhotos int      // size of the whole collection
	TitleHint   string   // e.g. the source folder name, may be empty
}

// Provider defines the interface for AI narrative backends.
type Provider interface {
	Name() string
	AnalyzeNarrative(ctx context.Context, req NarrativeRequest) (*book.Narrative, error)

	// Usage tracking. GetUsage returns a copy, safe to read while requests run.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

func (u *Usage) add(inputTokens, outputTokens int, pricing RequestPricing) {
	u.InputTokens += inputTokens
	u.OutputTokens += outputTokens
	u.TotalCost += float64(inputTokens) / 1_000_000 * pricing.Input
	u.TotalCost += float64(outputTokens) / 1_000_000 * pricing.Output
}

// usageMeter accumulates Usage for a provider shared by concurrent requests.
type usageMeter struct {
	mu    sync.Mutex
	usage Usage
}

func (m *usageMeter) add(inputTokens, outputTokens int, pricing RequestPricing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage.add(inputTokens, outputTokens, pricing)
}

func (m *usageMeter) snapshot() *Usage {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.usage
	return &u
}

func (m *usageMeter) reset() {
	m.mu.Lock()
	m.usage = Usage{}
	m.mu.Unlock()
}
