package ai

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

// NewProvider builds the named provider. API keys come from the usual
// provider environment variables.
func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "openai", "":
		return NewOpenAIProvider(modelName, os.Getenv("OPENAI_API_KEY")), nil
	case "anthropic":
		return NewAnthropicProvider(modelName, os.Getenv("ANTHROPIC_API_KEY")), nil
	case "ollama":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// SupportedProviders lists the names accepted by NewProvider.
func SupportedProviders() []string {
	return []string{"openai", "anthropic", "ollama", "mock"}
}
