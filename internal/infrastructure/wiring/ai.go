package wiring

import (
	"fmt"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
	infraai "github.com/felixgeelhaar/taskforce/pkg/ai"
	domainai "github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

// LoadAIProvider builds the configured provider wrapped with retry and
// timeout handling.
func LoadAIProvider(cfg config.AIConfig) (domainai.Provider, error) {
	base, err := infraai.NewProvider(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("load AI provider: %w", err)
	}

	resilience := infraai.DefaultResilienceConfig()
	if cfg.MaxRetries > 0 {
		resilience.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelayMs > 0 {
		resilience.RetryDelay = cfg.RetryDelay()
	}
	if cfg.TimeoutSec > 0 {
		resilience.Timeout = cfg.Timeout()
	}
	return infraai.NewResilientProviderWithConfig(base, resilience), nil
}
