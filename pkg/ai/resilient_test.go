package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	infraAI "github.com/felixgeelhaar/taskforce/pkg/ai"
	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

type faultyProvider struct {
	attempts int
	maxFail  int
}

func (f *faultyProvider) ID() string { return "faulty" }
func (f *faultyProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	f.attempts++
	if f.attempts <= f.maxFail {
		return nil, errors.New("transient error")
	}
	return &ai.CompletionResponse{Text: "success"}, nil
}

type slowProvider struct{}

func (s *slowProvider) ID() string { return "slow" }
func (s *slowProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(100 * time.Millisecond):
		return &ai.CompletionResponse{Text: "too late"}, nil
	}
}

func TestResilientProvider_ID_Delegates(t *testing.T) {
	p := infraAI.NewResilientProvider(&infraAI.MockProvider{Model: "test-model"})
	if p.ID() != "mock:test-model" {
		t.Errorf("expected ID 'mock:test-model', got %q", p.ID())
	}
}

func TestResilientProvider_Retry(t *testing.T) {
	faulty := &faultyProvider{maxFail: 1}
	p := infraAI.NewResilientProviderWithConfig(faulty, infraAI.ResilienceConfig{RetryDelay: time.Millisecond})

	resp, err := p.Complete(context.Background(), ai.CompletionRequest{})
	if err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if resp.Text != "success" {
		t.Errorf("expected success response, got %q", resp.Text)
	}
}

func TestResilientProvider_TimeoutFails(t *testing.T) {
	p := infraAI.NewResilientProvider(&slowProvider{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := p.Complete(ctx, ai.CompletionRequest{}); err == nil {
		t.Error("expected timeout error")
	}
}

func TestResilientProvider_ZeroConfigGetsDefaults(t *testing.T) {
	p := infraAI.NewResilientProviderWithConfig(&infraAI.MockProvider{}, infraAI.ResilienceConfig{})
	if p.Config() != infraAI.DefaultResilienceConfig() {
		t.Errorf("expected defaults, got %+v", p.Config())
	}
}

func TestResilientProvider_CustomConfig(t *testing.T) {
	cfg := infraAI.ResilienceConfig{MaxRetries: 5, RetryDelay: 2 * time.Second, Timeout: time.Minute}
	p := infraAI.NewResilientProviderWithConfig(&infraAI.MockProvider{}, cfg)
	if p.Config() != cfg {
		t.Errorf("expected %+v, got %+v", cfg, p.Config())
	}
}
