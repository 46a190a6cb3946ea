package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
)

const (
	defaultLlamaCppURL   = "http://localhost:8080"
	defaultLlamaCppModel = "llava"
)

// LlamaCppProvider implements Provider on the OpenAI-compatible endpoint of a
// llama.cpp server.
type LlamaCppProvider struct {
	endpoint string
	model    string
	client   *http.Client
	usage    usageMeter
}

// NewLlamaCppProvider validates baseURL, which must be an absolute http(s) URL.
func NewLlamaCppProvider(baseURL, model string) (*LlamaCppProvider, error) {
	if baseURL == "" {
		baseURL = defaultLlamaCppURL
	}
	if model == "" {
		model = defaultLlamaCppModel
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	switch {
	case err != nil:
		return nil, fmt.Errorf("invalid llama.cpp URL: %w", err)
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, fmt.Errorf("invalid llama.cpp URL scheme %q: must be http or https", u.Scheme)
	case u.Host == "":
		return nil, errors.New("invalid llama.cpp URL: missing host")
	}
	return &LlamaCppProvider{
		endpoint: u.JoinPath("/v1/chat/completions").String(),
		model:    model,
		client:   &http.Client{},
	}, nil
}

func (p *LlamaCppProvider) Name() string     { return p.model }
func (p *LlamaCppProvider) GetUsage() *Usage { return p.usage.snapshot() }
func (p *LlamaCppProvider) ResetUsage()      { p.usage.reset() }

type llamaCppRequest struct {
	Model       string            `json:"model"`
	Messages    []llamaCppMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
	Stream      bool              `json:"stream"`
}

// llamaCppMessage content is either a string or []llamaCppContentPart.
type llamaCppMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type llamaCppContentPart struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL *llamaCppImageURL `json:"image_url,omitempty"`
}

type llamaCppImageURL struct {
	URL string `json:"url"`
}

type llamaCppResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// AnalyzeNarrative sends the thumbnails as data URLs and parses the story the model suggests.
func (p *LlamaCppProvider) AnalyzeNarrative(ctx context.Context, req NarrativeRequest) (*book.Narrative, error) {
	thumbs := req.Thumbnails

	parts := make([]llamaCppContentPart, 0, len(thumbs)+1)
	parts = append(parts, llamaCppContentPart{Type: "text", Text: buildNarrativeContent(req)})
	for _, thumb := range thumbs {
		parts = append(parts, llamaCppContentPart{
			Type:     "image_url",
			ImageURL: &llamaCppImageURL{URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb)},
		})
	}

	ask := func(ctx context.Context, corrections []correction) (reply, error) {
		messages := []llamaCppMessage{
			{Role: "system", Content: narrativePrompt},
			{Role: "user", Content: parts},
		}
		for _, c := range corrections {
			messages = append(messages,
				llamaCppMessage{Role: "assistant", Content: c.answer},
				llamaCppMessage{Role: "user", Content: c.message},
			)
		}

		var out llamaCppResponse
		if err := postJSON(ctx, p.client, p.endpoint, llamaCppRequest{
			Model:       p.model,
			Messages:    messages,
			MaxTokens:   1500,
			Temperature: 0.2,
		}, &out); err != nil {
			return reply{}, err
		}
		r := reply{inputTokens: out.Usage.PromptTokens, outputTokens: out.Usage.CompletionTokens}
		if len(out.Choices) > 0 {
			r.text = out.Choices[0].Message.Content
		}
		return r, nil
	}

	return converse(ctx, "llama.cpp", ask, &p.usage, RequestPricing{}, len(thumbs))
}
