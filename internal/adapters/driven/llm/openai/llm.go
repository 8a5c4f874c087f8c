// Package openai restates journal entries with the OpenAI chat completions
// API, or any server that speaks it.
package openai

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/insight/internal/adapters/driven/llm"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

var (
	_ driven.Rephraser        = (*Rephraser)(nil)
	_ driven.PromptStoreAware = (*Rephraser)(nil)
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config configures the rephraser. Only APIKey is required.
type Config struct {
	APIKey string

	// BaseURL may point at Azure OpenAI or another compatible server.
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Rephraser restates journal entries through chat completions.
type Rephraser struct {
	llm.Prompts

	api   *llm.Client
	model string
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// errorText pulls error.message out of an API error body.
func errorText(body []byte) string {
	var reply struct {
		Error *apiError `json:"error"`
	}
	if json.Unmarshal(body, &reply) != nil || reply.Error == nil {
		return ""
	}
	return reply.Error.Message
}

// New creates a rephraser. A missing API key is ErrLLMUnavailable.
func New(cfg Config) (*Rephraser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrLLMUnavailable)
	}
	api := llm.NewClient("openai", cmp.Or(cfg.BaseURL, DefaultBaseURL), cmp.Or(cfg.Timeout, DefaultTimeout))
	api.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	api.ErrorText = errorText

	return &Rephraser{api: api, model: cmp.Or(cfg.Model, DefaultModel)}, nil
}

// Rephrase restates entry as a description of its themes.
func (r *Rephraser) Rephrase(ctx context.Context, entry string) (string, error) {
	req := chatCompletionRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.System()},
			{Role: "user", Content: r.User(entry)},
		},
		MaxTokens:   llm.MaxTokens,
		Temperature: llm.Temperature,
	}

	var resp chatCompletionResponse
	if err := r.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", fmt.Errorf("rephrase: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("rephrase: openai error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("rephrase: openai: no response choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// ModelName returns the chat model.
func (r *Rephraser) ModelName() string { return r.model }

// Ping lists models, which checks the key without running inference.
func (r *Rephraser) Ping(ctx context.Context) error {
	return r.api.Get(ctx, "/models")
}

// Close is a no-op.
func (r *Rephraser) Close() error { return nil }
