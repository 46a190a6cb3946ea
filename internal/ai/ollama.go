package ai

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/kozaktomas/photobook/internal/book"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2-vision:11b"
)

// OllamaProvider talks to a local Ollama server through /api/chat.
type OllamaProvider struct {
	endpoint string
	model    string
	client   *http.Client
	usage    usageMeter
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		endpoint: strings.TrimSuffix(baseURL, "/") + "/api/chat",
		model:    model,
		client:   &http.Client{},
	}
}

func (p *OllamaProvider) Name() string     { return p.model }
func (p *OllamaProvider) GetUsage() *Usage { return p.usage.snapshot() }
func (p *OllamaProvider) ResetUsage()      { p.usage.reset() }

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// AnalyzeNarrative sends the thumbnails as base64 images next to the prompt.
// Local models are free, so usage only counts tokens.
func (p *OllamaProvider) AnalyzeNarrative(ctx context.Context, req NarrativeRequest) (*book.Narrative, error) {
	thumbs := req.Thumbnails

	encoded := make([]string, len(thumbs))
	for i, thumb := range thumbs {
		encoded[i] = base64.StdEncoding.EncodeToString(thumb)
	}
	opening := []ollamaMessage{
		{Role: "system", Content: narrativePrompt},
		{Role: "user", Content: buildNarrativeContent(req), Images: encoded},
	}

	ask := func(ctx context.Context, corrections []correction) (reply, error) {
		messages := append([]ollamaMessage(nil), opening...)
		for _, c := range corrections {
			messages = append(messages,
				ollamaMessage{Role: "assistant", Content: c.answer},
				ollamaMessage{Role: "user", Content: c.message},
			)
		}

		var out ollamaResponse
		err := postJSON(ctx, p.client, p.endpoint, ollamaRequest{
			Model:    p.model,
			Messages: messages,
			Format:   "json",
			Options:  ollamaOptions{NumPredict: 1500},
		}, &out)
		return reply{text: out.Message.Content, inputTokens: out.PromptEvalCount, outputTokens: out.EvalCount}, err
	}

	return converse(ctx, "ollama", ask, &p.usage, RequestPricing{}, len(thumbs))
}
