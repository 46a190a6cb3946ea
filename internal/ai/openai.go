package ai

import (
	"context"
	"encoding/base64"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/photobook/internal/book"
)

const chatModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	client  *openai.Client
	usage   usageMeter
	pricing RequestPricing
}

// NewOpenAIProvider creates a provider for the chat completions API. Extra
// options are appended after the API key, e.g. option.WithBaseURL in tests.
func NewOpenAIProvider(apiKey string, pricing RequestPricing, opts ...option.RequestOption) *OpenAIProvider {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIProvider{client: &client, pricing: pricing}
}

func (p *OpenAIProvider) GetUsage() *Usage { return p.usage.snapshot() }
func (p *OpenAIProvider) ResetUsage()      { p.usage.reset() }
func (p *OpenAIProvider) Name() string     { return chatModel }

func (p *OpenAIProvider) AnalyzeNarrative(ctx context.Context, req NarrativeRequest) (*book.Narrative, error) {
	thumbs := req.Thumbnails

	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(buildNarrativeContent(req))}
	for _, thumb := range thumbs {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(thumb),
			Detail: "low",
		}))
	}
	opening := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(narrativePrompt),
		{OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
		}},
	}

	ask := func(ctx context.Context, corrections []correction) (reply, error) {
		messages := append([]openai.ChatCompletionMessageParamUnion(nil), opening...)
		for _, c := range corrections {
			messages = append(messages, openai.AssistantMessage(c.answer), openai.UserMessage(c.message))
		}

		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(1500),
		})
		if err != nil {
			return reply{}, err
		}
		r := reply{inputTokens: int(resp.Usage.PromptTokens), outputTokens: int(resp.Usage.CompletionTokens)}
		if len(resp.Choices) > 0 {
			r.text = resp.Choices[0].Message.Content
		}
		return r, nil
	}

	return converse(ctx, "OpenAI", ask, &p.usage, p.pricing, len(thumbs))
}
