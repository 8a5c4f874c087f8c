// Package ollama restates journal entries with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/insight/internal/adapters/driven/llm"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

var (
	_ driven.Rephraser        = (*Rephraser)(nil)
	_ driven.PromptStoreAware = (*Rephraser)(nil)
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config configures the rephraser. Zero values use the defaults.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Rephraser restates journal entries through /api/chat. Nothing leaves the
// machine.
type Rephraser struct {
	llm.Prompts

	api   *llm.Client
	model string
}

type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
	Error   string      `json:"error,omitempty"`
}

// New creates a rephraser.
func New(cfg Config) *Rephraser {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Rephraser{
		api:   llm.NewClient("ollama", cfg.BaseURL, cfg.Timeout),
		model: cfg.Model,
	}
}

// Rephrase restates entry as a description of its themes. Streaming is off
// so the reply arrives as one object.
func (r *Rephraser) Rephrase(ctx context.Context, entry string) (string, error) {
	req := chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: r.System()},
			{Role: "user", Content: r.User(entry)},
		},
		Options: &options{NumPredict: llm.MaxTokens, Temperature: llm.Temperature},
	}

	var resp chatResponse
	if err := r.api.Post(ctx, "/api/chat", req, &resp); err != nil {
		return "", fmt.Errorf("rephrase: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("rephrase: ollama error: %s", resp.Error)
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// ModelName returns the chat model.
func (r *Rephraser) ModelName() string { return r.model }

// Ping lists local models to check the server is up.
func (r *Rephraser) Ping(ctx context.Context) error {
	return r.api.Get(ctx, "/api/tags")
}

// Close is a no-op.
func (r *Rephraser) Close() error { return nil }
