package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/photobook/internal/book"
)

const geminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	client  *genai.Client
	usage   usageMeter
	pricing RequestPricing
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, pricing: pricing}, nil
}

func (p *GeminiProvider) GetUsage() *Usage { return p.usage.snapshot() }
func (p *GeminiProvider) ResetUsage()      { p.usage.reset() }
func (p *GeminiProvider) Name() string     { return geminiModel }

// AnalyzeNarrative sends the prompt and thumbnails as a single user turn;
// the model is asked for a JSON response.
func (p *GeminiProvider) AnalyzeNarrative(ctx context.Context, req NarrativeRequest) (*book.Narrative, error) {
	thumbs := req.Thumbnails

	parts := []*genai.Part{genai.NewPartFromText(narrativePrompt + "\n\n" + buildNarrativeContent(req))}
	for _, thumb := range thumbs {
		parts = append(parts, genai.NewPartFromBytes(thumb, "image/jpeg"))
	}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	ask := func(ctx context.Context, corrections []correction) (reply, error) {
		contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
		for _, c := range corrections {
			contents = append(contents,
				genai.NewContentFromText(c.answer, genai.RoleModel),
				genai.NewContentFromText(c.message, genai.RoleUser),
			)
		}

		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return reply{}, err
		}
		r := reply{text: result.Text()}
		if m := result.UsageMetadata; m != nil {
			r.inputTokens, r.outputTokens = int(m.PromptTokenCount), int(m.CandidatesTokenCount)
		}
		return r, nil
	}

	return converse(ctx, "Gemini", ask, &p.usage, p.pricing, len(thumbs))
}
