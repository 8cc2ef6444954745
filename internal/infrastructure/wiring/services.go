package wiring

import (
	"go.uber.org/zap"

	"github.com/felixgeelhaar/taskforce/internal/infrastructure/config"
	"github.com/felixgeelhaar/taskforce/pkg/application"
	"github.com/felixgeelhaar/taskforce/pkg/flow"
	"github.com/felixgeelhaar/taskforce/pkg/sdk"
)

// BuildDecomposeService wires the backend-side decomposition service.
func BuildDecomposeService(cfg *config.Config, logger *zap.Logger) (*application.DecomposeService, error) {
	provider, err := LoadAIProvider(cfg.AI)
	if err != nil {
		return nil, err
	}
	logger.Info("AI provider ready", zap.String("provider", provider.ID()))
	return application.NewDecomposeService(provider, application.DecomposeOptions{
		MaxInputTokens:  cfg.Server.MaxInputTokens,
		MaxOutputTokens: cfg.Server.MaxOutputTokens,
		Logger:          logger.Named("decompose"),
	}), nil
}

// BuildBackendClient returns a client for the configured backend URL.
func BuildBackendClient(cfg *config.Config) *sdk.Client {
	return sdk.NewClient(cfg.Backend.URL, sdk.WithTimeout(cfg.Backend.Timeout()))
}

// BuildController wires a request flow controller against the backend.
func BuildController(cfg *config.Config, logger *zap.Logger) (*flow.Controller, error) {
	return flow.NewController(BuildBackendClient(cfg), flow.WithLogger(logger.Named("flow")))
}
