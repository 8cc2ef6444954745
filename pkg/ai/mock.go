package ai

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

const (
	mockSubtasks  = `[{"description": "Research options", "time_estimate": "30 minutes"}, {"description": "Draft a checklist", "time_estimate": "20 minutes"}, {"description": "Book what is needed", "time_estimate": "1 hour"}]`
	mockStructure = `[{"step": "Prepare", "details": ["Research options", "Draft a checklist"], "time_estimate": "50 minutes"}, {"step": "Execute", "details": ["Book what is needed"], "time_estimate": "1 hour"}]`
)

// MockProvider returns canned answers without network access. It backs
// the "mock" provider used for local demos and tests.
type MockProvider struct {
	Model string
	// Text, when set, is returned verbatim for every prompt.
	Text string
}

func (m *MockProvider) ID() string {
	return "mock:" + m.Model
}

func (m *MockProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := m.Text
	if text == "" {
		text = mockSubtasks
		if strings.Contains(req.Prompt, "'step'") {
			text = mockStructure
		}
	}

	return &ai.CompletionResponse{
		Text:  text,
		Model: m.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}
