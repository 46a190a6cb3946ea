package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/kozaktomas/photobook/internal/book"
	"github.com/kozaktomas/photobook/internal/config"
	"github.com/kozaktomas/photobook/internal/metrics"
)

// NewProvider builds the configured narrative provider.
// It returns nil without error when no provider is configured.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	pricing := func(model string) RequestPricing {
		p := cfg.GetModelPricing(model).Standard
		return RequestPricing{Input: p.Input, Output: p.Output}
	}

	switch cfg.AI.Provider {
	case "":
		return nil, nil
	case "openai":
		if cfg.AI.OpenAIToken == "" {
			return nil, errors.New("OPENAI_TOKEN is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.AI.OpenAIToken, pricing(chatModel)), nil
	case "gemini":
		if cfg.AI.GeminiKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		p, err := NewGeminiProvider(ctx, cfg.AI.GeminiKey, pricing(geminiModel))
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ollama":
		return NewOllamaProvider(cfg.AI.OllamaURL, cfg.AI.OllamaModel), nil
	case "llamacpp":
		p, err := NewLlamaCppProvider(cfg.AI.LlamaCppURL, cfg.AI.LlamaCppModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

// Enrich asks the provider for a narrative within timeout. Any failure is logged
// and yields nil so composition continues on heuristics alone.
func Enrich(ctx context.Context, p Provider, req NarrativeRequest, timeout time.Duration) *book.Narrative {
	if p == nil || len(req.Thumbnails) == 0 {
		return nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	narrative, err := p.AnalyzeNarrative(ctx, req)
	if err != nil {
		result := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result = "timeout"
		}
		metrics.RecordEnrichment(p.Name(), result)
		log.Printf("Warning: narrative enrichment via %s failed, continuing without it: %v", p.Name(), err)
		return nil
	}

	metrics.RecordEnrichment(p.Name(), "ok")
	return narrative
}
