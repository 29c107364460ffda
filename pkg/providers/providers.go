// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package providers builds the configured text generation backend.
package providers

import (
	"context"
	"log/slog"

	"github.com/jllopis/careermentor/pkg/config"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
	"github.com/jllopis/careermentor/pkg/providers/anthropic"
	"github.com/jllopis/careermentor/pkg/providers/gemini"
	"github.com/jllopis/careermentor/pkg/providers/openai"
	"github.com/jllopis/careermentor/pkg/resilience"
)

// New returns the chat provider named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "ollama", "":
		p, err := llm.NewOllama(cfg.BaseURL)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidArgument, "invalid llm.base_url", err).
				WithContext("provider", "ollama")
		}
		return p, nil
	case "openai":
		return openai.New(
			openai.WithAPIKey(cfg.APIKey),
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithModel(cfg.Model),
		), nil
	case "anthropic":
		return anthropic.New(
			anthropic.WithAPIKey(cfg.APIKey),
			anthropic.WithBaseURL(cfg.BaseURL),
			anthropic.WithModel(cfg.Model),
		), nil
	case "gemini":
		p, err := gemini.New(ctx,
			gemini.WithAPIKey(cfg.APIKey),
			gemini.WithBaseURL(cfg.BaseURL),
			gemini.WithModel(cfg.Model),
		)
		if err != nil {
			return nil, errors.ExternalService(err, "gemini")
		}
		return p, nil
	default:
		return nil, errors.InvalidArgument("unknown llm provider").WithContext("provider", cfg.Provider)
	}
}

// NewGenerator builds the provider, adapts it to llm.Generator and bounds
// every call with cfg.Timeout.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llm.Generator, error) {
	provider, err := New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Wrap(provider, cfg, logger), nil
}

// Wrap adapts an existing provider with the configured model, temperature
// and timeout.
func Wrap(provider llm.Provider, cfg config.LLMConfig, logger *slog.Logger) llm.Generator {
	gen := llm.NewGenerator(provider,
		llm.WithModel(cfg.Model),
		llm.WithTemperature(cfg.Temperature),
		llm.WithProviderName(cfg.Provider),
		llm.WithLogger(logger),
	)
	return resilience.NewTimeoutGenerator(gen, cfg.Timeout)
}
