// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultOllamaModel is used when the request names no model.
const DefaultOllamaModel = "llama3.1"

// OllamaProvider implements Provider on the Ollama API client.
type OllamaProvider struct {
	baseURL *url.URL
	client  *api.Client
}

// NewOllama creates a provider for the Ollama server at baseURL. An empty
// baseURL selects DefaultOllamaURL.
func NewOllama(baseURL string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q: scheme and host are required", baseURL)
	}
	return &OllamaProvider{
		baseURL: u,
		client:  api.NewClient(u, &http.Client{Timeout: 120 * time.Second}),
	}, nil
}

// BaseURL reports the server the provider talks to.
func (p *OllamaProvider) BaseURL() string { return p.baseURL.String() }

// Chat sends a single non-streaming chat request.
func (p *OllamaProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = DefaultOllamaModel
	}

	messages := make([]api.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, api.Message{Role: string(m.Role), Content: m.Content})
	}

	oReq := &api.ChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   new(bool),
	}
	if req.Temperature != 0 {
		oReq.Options = map[string]interface{}{"temperature": req.Temperature}
	}

	var (
		content strings.Builder
		last    api.ChatResponse
	)
	err := p.client.Chat(ctx, oReq, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		last = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat (%s): %w", model, err)
	}

	return &ChatResponse{
		Content: content.String(),
		Usage: Usage{
			PromptTokens:     last.PromptEvalCount,
			CompletionTokens: last.EvalCount,
			TotalTokens:      last.PromptEvalCount + last.EvalCount,
		},
	}, nil
}

var _ Provider = (*OllamaProvider)(nil)
