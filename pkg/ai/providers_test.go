package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	infraAI "github.com/felixgeelhaar/taskforce/pkg/ai"
	"github.com/felixgeelhaar/taskforce/pkg/domain/ai"
)

func TestOpenAIProvider_DefaultModel(t *testing.T) {
	p := infraAI.NewOpenAIProvider("", "key")
	if p.ID() != "openai:gpt-3.5-turbo" {
		t.Errorf("expected default model, got %q", p.ID())
	}
}

func TestOpenAIProvider_Complete_NoAPIKey(t *testing.T) {
	p := infraAI.NewOpenAIProvider("", "")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Bearer test-key, got %s", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&received)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "[]"}},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
		})
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("gpt-4o", "test-key", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello", System: "sys", MaxTokens: 200})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "[]" || resp.Model != "gpt-4o" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.Usage.Total() != 15 {
		t.Errorf("expected 15 tokens, got %d", resp.Usage.Total())
	}
	if received["max_tokens"] != float64(200) {
		t.Errorf("expected max_tokens 200 in request, got %v", received["max_tokens"])
	}
	msgs, _ := received["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Errorf("expected system + user messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_Complete_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("", "k", server.URL, server.Client())
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestAnthropicProvider_ID(t *testing.T) {
	p := infraAI.NewAnthropicProvider("claude-3-5-haiku-latest", "test-key")
	if p.ID() != "anthropic:claude-3-5-haiku-latest" {
		t.Errorf("unexpected ID %q", p.ID())
	}
	if infraAI.NewAnthropicProvider("", "k").Model == "" {
		t.Error("expected a default model")
	}
}

func TestAnthropicProvider_Complete_NoAPIKey(t *testing.T) {
	p := infraAI.NewAnthropicProvider("", "")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello"}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestAnthropicProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %q", r.Header.Get("x-api-key"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Hello from Anthropic!"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 6}
		}`))
	}))
	defer server.Close()

	p := infraAI.NewAnthropicProviderWithBaseURL("claude-3-5-haiku-latest", "test-key", server.URL)
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Hello", System: "be brief"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Hello from Anthropic!" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 6 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestOllamaProvider_Basic(t *testing.T) {
	p := infraAI.NewOllamaProvider("")
	if p.ID() != "ollama:llama3" {
		t.Errorf("expected ID ollama:llama3, got %s", p.ID())
	}
}

func TestOllamaProvider_Validation(t *testing.T) {
	p := infraAI.NewOllamaProvider("invalid model;")
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("expected error for invalid model name")
	}
	if _, err := infraAI.NewOllamaProvider("llama3").Complete(context.Background(), ai.CompletionRequest{Temperature: -1}); err == nil {
		t.Error("expected error for negative temp")
	}
}

func TestOllamaProvider_Complete_JSONFormat(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response":          "  [1]  ",
			"done":              true,
			"prompt_eval_count": 7,
			"eval_count":        3,
		})
	}))
	defer server.Close()

	p := infraAI.NewOllamaProviderWithClient("llama3", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "hi", JSON: true, MaxTokens: 50})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "[1]" {
		t.Errorf("expected trimmed text, got %q", resp.Text)
	}
	if received["format"] != "json" {
		t.Errorf("expected json format, got %v", received["format"])
	}
	if resp.Usage.InputTokens != 7 || resp.Usage.OutputTokens != 3 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestMockProvider_CannedAnswers(t *testing.T) {
	p := &infraAI.MockProvider{Model: "demo"}
	sub, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "Break down the following task"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sub.Text, "time_estimate") || strings.Contains(sub.Text, `"step"`) {
		t.Errorf("expected subtasks answer, got %s", sub.Text)
	}

	st, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "each with 'step', 'details'"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(st.Text, `"step"`) {
		t.Errorf("expected structure answer, got %s", st.Text)
	}
}

func TestNewProvider(t *testing.T) {
	for _, name := range infraAI.SupportedProviders() {
		p, err := infraAI.NewProvider(name, "")
		if err != nil {
			t.Errorf("NewProvider(%q): %v", name, err)
			continue
		}
		if !strings.HasPrefix(p.ID(), name+":") {
			t.Errorf("NewProvider(%q).ID() = %q", name, p.ID())
		}
	}
	if _, err := infraAI.NewProvider("gemini", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestOpenAIProvider_Complete_APIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("", "bad", server.URL, server.Client())
	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	var apiErr *infraAI.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Incorrect API key provided" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestOllamaProvider_Complete_APIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama9' not found"}`))
	}))
	defer server.Close()

	p := infraAI.NewOllamaProviderWithClient("llama9", server.URL, server.Client())
	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err == nil || err.Error() != "Ollama API returned status 404: model 'llama9' not found" {
		t.Fatalf("unexpected error %v", err)
	}
}
