package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider completes prompts through the Anthropic Messages API.
type AnthropicProvider struct {
	Model  string
	APIKey string
	opts   []option.RequestOption
}

func NewAnthropicProvider(model string, apiKey string) *AnthropicProvider {
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	return &AnthropicProvider{
		Model:  model,
		APIKey: apiKey,
	}
}

// NewAnthropicProviderWithBaseURL points the provider at a different API host (for testing).
func NewAnthropicProviderWithBaseURL(model, apiKey, baseURL string) *AnthropicProvider {
	p := NewAnthropicProvider(model, apiKey)
	if baseURL != "" {
		p.opts = append(p.opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}
	return p
}

func (p *AnthropicProvider) ID() string {
	return "anthropic:" + p.Model
}

func (p *AnthropicProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if p.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key not provided (set ANTHROPIC_API_KEY)")
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(p.APIKey)}, p.opts...)...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.Model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("Anthropic API returned no content")
	}

	return &ai.CompletionResponse{
		Text:  text.String(),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}, nil
}
