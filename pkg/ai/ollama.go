package ai

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

const defaultOllamaURL = "http://localhost:11434/api/generate"

type OllamaProvider struct {
	Model      string
	baseURL    string
	httpClient *http.Client
}

func NewOllamaProvider(model string) *OllamaProvider {
	if model == "" {
		model = "llama3"
	}
	return &OllamaProvider{Model: model, baseURL: defaultOllamaURL}
}

// NewOllamaProviderWithClient creates a provider with custom HTTP client and base URL (for testing).
func NewOllamaProviderWithClient(model, baseURL string, client *http.Client) *OllamaProvider {
	p := NewOllamaProvider(model)
	if baseURL != "" {
		p.baseURL = baseURL
	}
	p.httpClient = client
	return p
}

func (p *OllamaProvider) ID() string {
	return "ollama:" + p.Model
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Format  string         `json:"format,omitempty"`
	Options *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
}

type ollamaResponse struct {
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

var safeModelName = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)

func (p *OllamaProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if !safeModelName.MatchString(p.Model) {
		return nil, fmt.Errorf("invalid model name: %s", p.Model)
	}

	if req.Temperature < 0 {
		return nil, fmt.Errorf("invalid temperature")
	}

	oReq := ollamaRequest{
		Model:  p.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
	}
	if req.JSON {
		oReq.Format = "json"
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		oReq.Options = &ollamaOptions{NumPredict: req.MaxTokens, Temperature: req.Temperature}
	}

	endpoint := jsonEndpoint{
		provider:  "Ollama",
		url:       p.baseURL,
		client:    p.httpClient,
		errorPath: "error",
	}
	var oResp ollamaResponse
	if err := endpoint.post(ctx, oReq, &oResp); err != nil {
		return nil, err
	}

	usage := ai.TokenUsage{InputTokens: oResp.PromptEvalCount, OutputTokens: oResp.EvalCount}
	if usage.InputTokens == 0 {
		usage.InputTokens = len(req.Prompt) / 4
	}
	if usage.OutputTokens == 0 {
		usage.OutputTokens = len(oResp.Response) / 4
	}

	return &ai.CompletionResponse{
		Text:  strings.TrimSpace(oResp.Response),
		Model: p.Model,
		Usage: usage,
	}, nil
}
