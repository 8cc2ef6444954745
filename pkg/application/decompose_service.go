package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
	"github.com/felixgeelhaar/taskforce/pkg/domain/task"
)

const (
	DefaultMaxInputTokens  = 100
	DefaultMaxOutputTokens = 200
)

const subtaskSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["description", "time_estimate"],
    "properties": {
      "description": { "type": "string" },
      "time_estimate": { "type": "string" }
    }
  }
}`

const structureSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["step", "details", "time_estimate"],
    "properties": {
      "step": { "type": "string" },
      "details": { "type": "array", "items": { "type": "string" } },
      "time_estimate": { "type": "string" }
    }
  }
}`

var (
	subtaskSchemaLoader   = gojsonschema.NewStringLoader(subtaskSchemaJSON)
	structureSchemaLoader = gojsonschema.NewStringLoader(structureSchemaJSON)
)

const subtaskSystemPrompt = "You are an expert assistant with a talent for deconstructing complex tasks into clear, manageable subtasks. " +
	"You generate multiple options for each step, allowing users to select the best approach and create a personalized task list to achieve their goals efficiently. " +
	"Provide your response in JSON format."

const structureSystemPrompt = "You are a helpful assistant that creates structured plans. Provide your response in JSON format."

// TokenLimitError is returned when an input is larger than the configured budget.
type TokenLimitError struct {
	Limit int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("Input exceeds maximum token limit of %d", e.Limit)
}

// ProcessingError wraps a provider or decoding failure with the operation prefix
// that is reported to clients.
type ProcessingError struct {
	Prefix string
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Prefix, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// DecomposeOptions tunes a DecomposeService.
type DecomposeOptions struct {
	MaxInputTokens  int
	MaxOutputTokens int
	Logger          *zap.Logger
}

// DecomposeService turns task descriptions into subtasks and selected subtasks
// into a step-by-step structure using an AI provider.
type DecomposeService struct {
	provider  ai.Provider
	maxInput  int
	maxOutput int
	logger    *zap.Logger
}

func NewDecomposeService(provider ai.Provider, opts DecomposeOptions) *DecomposeService {
	if opts.MaxInputTokens <= 0 {
		opts.MaxInputTokens = DefaultMaxInputTokens
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &DecomposeService{
		provider:  provider,
		maxInput:  opts.MaxInputTokens,
		maxOutput: opts.MaxOutputTokens,
		logger:    opts.Logger,
	}
}

// Provider returns the provider currently used by the service.
func (s *DecomposeService) Provider() ai.Provider {
	return s.provider
}

func (s *DecomposeService) GetSubtasks(ctx context.Context, description string) ([]task.Subtask, error) {
	if err := task.ValidateDescription(description); err != nil {
		return nil, err
	}
	if err := s.checkTokens(description); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Break down the following task into subtasks, including an estimated time for each subtask in minutes.
Respond with a JSON array of objects, each with 'description' and 'time_estimate' fields.
For example:
[
    {"description": "Research venues", "time_estimate": "30 minutes"},
    {"description": "Create guest list", "time_estimate": "20 minutes"}
]
Task: %s`, description)

	const prefix = "Error processing subtasks"
	payload, err := s.complete(ctx, prefix, ai.CompletionRequest{
		Prompt:    prompt,
		System:    subtaskSystemPrompt,
		MaxTokens: s.maxOutput,
		JSON:      true,
	}, subtaskSchemaLoader)
	if err != nil {
		return nil, err
	}

	var subtasks []task.Subtask
	if err := json.Unmarshal([]byte(payload), &subtasks); err != nil {
		return nil, &ProcessingError{Prefix: "Invalid JSON response", Err: err}
	}
	s.logger.Debug("subtasks generated", zap.Int("count", len(subtasks)))
	return subtasks, nil
}

func (s *DecomposeService) GetOverallStructure(ctx context.Context, selected []task.Subtask) ([]task.StructureStep, error) {
	if len(selected) == 0 {
		return nil, task.ErrNoSubtasks
	}
	lines := task.JoinLines(selected)
	if err := s.checkTokens(lines); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an expert planner with the ability to create a cohesive overall structure and detailed plan for completing subtasks.
You generate multiple strategies for organizing and executing these steps, giving users the most effective approach to achieve their objectives smoothly and efficiently.
Respond with a JSON array of objects, each with 'step', 'details' (an array of strings), and 'time_estimate' fields. Be elaborate in 'details' to provide a clear plan.
For example:
[
    {
        "step": "Prepare venue",
        "details": ["Book location", "Arrange seating", "Set up decorations"],
        "time_estimate": "2 hours"
    },
    {
        "step": "Organize catering",
        "details": ["Choose menu", "Place order", "Arrange delivery"],
        "time_estimate": "1 hour"
    }
]
Subtasks:
%s`, lines)

	const prefix = "Error processing overall structure"
	payload, err := s.complete(ctx, prefix, ai.CompletionRequest{
		Prompt: prompt,
		System: structureSystemPrompt,
		JSON:   true,
	}, structureSchemaLoader)
	if err != nil {
		return nil, err
	}

	var steps []task.StructureStep
	if err := json.Unmarshal([]byte(payload), &steps); err != nil {
		return nil, &ProcessingError{Prefix: "Invalid JSON response", Err: err}
	}
	s.logger.Debug("structure generated", zap.Int("steps", len(steps)))
	return steps, nil
}

func (s *DecomposeService) checkTokens(text string) error {
	if n := EstimateTokens(text); n > s.maxInput {
		s.logger.Info("input rejected", zap.Int("tokens", n), zap.Int("limit", s.maxInput))
		return &TokenLimitError{Limit: s.maxInput}
	}
	return nil
}

func (s *DecomposeService) complete(ctx context.Context, prefix string, req ai.CompletionRequest, schema gojsonschema.JSONLoader) (string, error) {
	if s.provider == nil {
		return "", &ProcessingError{Prefix: prefix, Err: errors.New("no AI provider configured")}
	}
	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("completion failed", zap.String("provider", s.provider.ID()), zap.Error(err))
		return "", &ProcessingError{Prefix: prefix, Err: err}
	}
	s.logger.Debug("completion received",
		zap.String("provider", s.provider.ID()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)

	payload := extractJSONPayload(resp.Text)
	if !json.Valid([]byte(payload)) {
		var probe any
		err := json.Unmarshal([]byte(payload), &probe)
		return "", &ProcessingError{Prefix: "Invalid JSON response", Err: err}
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return "", &ProcessingError{Prefix: prefix, Err: err}
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return "", &ProcessingError{Prefix: prefix, Err: fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))}
	}
	return payload, nil
}

// extractJSONPayload strips markdown fences and a leading "json" tag, then
// slices out the outermost JSON array or object.
func extractJSONPayload(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSpace(strings.TrimPrefix(clean, "json"))

	if clean == "" {
		return clean
	}

	start := strings.IndexAny(clean, "[{")
	if start == -1 {
		return clean
	}
	end := strings.LastIndexAny(clean, "]}")
	if end == -1 || end < start {
		return clean[start:]
	}
	return clean[start : end+1]
}
