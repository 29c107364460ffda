// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package gemini provides a Google Gemini API provider.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/jllopis/careermentor/pkg/llm"
)

// DefaultModel is used when neither the provider nor the request names one.
const DefaultModel = "gemini-2.0-flash"

// Provider implements llm.Provider for Google Gemini API.
type Provider struct {
	client *genai.Client
	model  string
	config genai.ClientConfig
}

// Option configures the Provider.
type Option func(*Provider)

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(p *Provider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(p *Provider) {
		if apiKey != "" {
			p.config.APIKey = apiKey
		}
	}
}

// WithBaseURL points the client at a custom endpoint.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		if url != "" {
			p.config.HTTPOptions.BaseURL = url
		}
	}
}

// New creates a new Gemini provider.
// API key is read from GOOGLE_API_KEY or GEMINI_API_KEY environment variable by default.
func New(ctx context.Context, opts ...Option) (*Provider, error) {
	p := &Provider{
		model:  DefaultModel,
		config: genai.ClientConfig{Backend: genai.BackendGeminiAPI},
	}
	for _, opt := range opts {
		opt(p)
	}
	client, err := genai.NewClient(ctx, &p.config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

// NewWithAPIKey creates a new Gemini provider with explicit API key.
func NewWithAPIKey(ctx context.Context, apiKey string, opts ...Option) (*Provider, error) {
	opts = append([]Option{WithAPIKey(apiKey)}, opts...)
	return New(ctx, opts...)
}

// Chat implements llm.Provider.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	contents, systemInstruction := convertMessages(req.Messages)

	config := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content failed: %w", err)
	}
	return convertResponse(resp), nil
}

// convertMessages splits system messages from the conversation turns.
func convertMessages(messages []llm.Message) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, msg.Content)
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return contents, strings.Join(system, "\n\n")
}

func convertResponse(resp *genai.GenerateContentResponse) *llm.ChatResponse {
	result := &llm.ChatResponse{}
	if resp.UsageMetadata != nil {
		result.Usage = llm.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			result.Content += part.Text
		}
	}
	return result
}

// Ensure Provider implements llm.Provider.
var _ llm.Provider = (*Provider)(nil)
