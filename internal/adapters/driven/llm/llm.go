// Package llm holds what the chat-based journal rephrasers share: the
// fallback prompts, prompt rendering and a small JSON-over-HTTP client.
// The extractive rephraser needs none of it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Generation limits shared by every provider. A restatement is two or three
// sentences, and a low temperature keeps it close to the entry.
const (
	MaxTokens   = 200
	Temperature = 0.3
)

// maxBody caps how much of a reply is read.
const maxBody = 1 << 20

// Fallback prompts, used until a prompt store is set or when it fails.
const (
	FallbackSystem = `You restate journal entries as short descriptions of their spiritual themes. ` +
		`Never answer the entry or give advice.`

	FallbackRephrase = `Restate the following journal entry in two or three sentences that name its underlying spiritual themes.
Return ONLY the restatement, nothing else.

Entry:
%s

Restatement:`
)

// Render substitutes entry into template. A customised template that has
// lost its %s placeholder gets the entry appended instead.
func Render(template, entry string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, entry)
	}
	return template + "\n\n" + entry
}

// Prompts resolves the journal prompts from an optional store. Embed it to
// satisfy driven.PromptStoreAware.
type Prompts struct {
	store driven.PromptStore
}

// SetPromptStore sets the store prompts are loaded from.
func (p *Prompts) SetPromptStore(store driven.PromptStore) {
	p.store = store
}

// System returns the system prompt.
func (p *Prompts) System() string {
	return p.load(driven.PromptJournalSystem, FallbackSystem)
}

// User returns the rephrase instruction with entry filled in.
func (p *Prompts) User(entry string) string {
	return Render(p.load(driven.PromptJournalRephrase, FallbackRephrase), entry)
}

func (p *Prompts) load(name, fallback string) string {
	if p.store == nil {
		return fallback
	}
	text, err := p.store.Load(name)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return text
}

// StatusError is a reply outside 2xx. Authentication failures and missing
// models unwrap to domain.ErrLLMUnavailable.
type StatusError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Service, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return domain.ErrLLMUnavailable
	}
	return nil
}

// Client sends JSON requests below BaseURL.
type Client struct {
	Service string
	BaseURL string
	HTTP    *http.Client

	// Header is added to every request.
	Header http.Header

	// ErrorText extracts a readable message from an error body. Nil uses
	// the body as is.
	ErrorText func(body []byte) string
}

// NewClient creates a client. A trailing slash on baseURL is dropped.
func NewClient(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		Service: service,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Header:  make(http.Header),
	}
}

// Post sends in as JSON to path and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.Service, err)
	}
	return nil
}

// Get requests path and discards the reply. It is used to check the
// service is reachable and the credentials are accepted.
func (c *Client) Get(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodGet, path, http.NoBody)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.Header {
		req.Header[k] = v
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", c.Service, errors.Join(domain.ErrLLMUnavailable, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.Service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if c.ErrorText != nil {
			if text := c.ErrorText(body); text != "" {
				msg = text
			}
		}
		return nil, &StatusError{Service: c.Service, StatusCode: resp.StatusCode, Message: msg}
	}
	return body, nil
}
