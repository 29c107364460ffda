// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

// Generator is the text generation port: given a role instruction and a
// prompt it returns generated text. Failures are reported as
// errors.CodeExternalService.
type Generator interface {
	Generate(ctx context.Context, instruction, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, instruction, prompt string) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	return f(ctx, instruction, prompt)
}

// ProviderGenerator sends [system: instruction, user: prompt] to a chat Provider.
type ProviderGenerator struct {
	provider    Provider
	name        string
	model       string
	temperature float64
	logger      *slog.Logger
}

// GeneratorOption configures a ProviderGenerator.
type GeneratorOption func(*ProviderGenerator)

// WithModel sets the model sent with every request.
func WithModel(model string) GeneratorOption {
	return func(g *ProviderGenerator) { g.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) GeneratorOption {
	return func(g *ProviderGenerator) { g.temperature = t }
}

// WithProviderName labels telemetry with the backend name.
func WithProviderName(name string) GeneratorOption {
	return func(g *ProviderGenerator) { g.name = name }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) GeneratorOption {
	return func(g *ProviderGenerator) { g.logger = logger }
}

// NewGenerator adapts a chat Provider to the Generator port.
func NewGenerator(provider Provider, opts ...GeneratorOption) *ProviderGenerator {
	g := &ProviderGenerator{provider: provider}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Generate implements Generator.
func (g *ProviderGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(telemetry.LLMAttributes(g.model, g.name)...)

	start := time.Now()
	resp, err := g.provider.Chat(ctx, ChatRequest{
		Model: g.model,
		Messages: []Message{
			{Role: RoleSystem, Content: instruction},
			{Role: RoleUser, Content: prompt},
		},
		Temperature: g.temperature,
	})
	elapsed := time.Since(start)
	if err != nil {
		g.logger.ErrorContext(ctx, "text generation failed",
			slog.String("provider", g.name),
			slog.String("model", g.model),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
		return "", errors.ExternalService(err, "llm").
			WithContext("provider", g.name).
			WithContext("model", g.model)
	}
	if resp == nil {
		return "", errors.ExternalService(fmt.Errorf("empty response from provider"), "llm").
			WithContext("provider", g.name).
			WithContext("model", g.model)
	}

	span.SetAttributes(telemetry.LLMUsageAttributes(
		resp.Usage.PromptTokens,
		resp.Usage.CompletionTokens,
		float64(elapsed.Microseconds())/1000,
	)...)
	g.logger.DebugContext(ctx, "text generated",
		slog.String("provider", g.name),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("elapsed", elapsed),
	)
	return resp.Content, nil
}

var _ Generator = (*ProviderGenerator)(nil)
