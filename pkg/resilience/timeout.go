// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package resilience provides the caller-level timeout layered over text
// generation. The dispatcher itself never retries.
package resilience

import (
	"context"
	"time"

	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
)

// TimeoutConfig controls timeout behavior.
type TimeoutConfig struct {
	// Duration is the maximum time allowed for the operation. Zero disables
	// the boundary.
	Duration time.Duration
}

// WithTimeout executes fn with a timeout boundary. fn receives the bounded
// context. Returns errors.CodeTimeout if the deadline is exceeded.
func WithTimeout[T any](ctx context.Context, config TimeoutConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if config.Duration <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, timeoutError(ctx.Err(), config.Duration)
		}
		return zero, ctx.Err()
	case res := <-done:
		if res.err != nil && ctx.Err() == context.DeadlineExceeded {
			return res.value, timeoutError(ctx.Err(), config.Duration)
		}
		return res.value, res.err
	}
}

// TimeoutGenerator bounds every Generate call with a deadline.
type TimeoutGenerator struct {
	next   llm.Generator
	config TimeoutConfig
}

// NewTimeoutGenerator wraps next. A zero duration returns a pass-through.
func NewTimeoutGenerator(next llm.Generator, d time.Duration) *TimeoutGenerator {
	return &TimeoutGenerator{next: next, config: TimeoutConfig{Duration: d}}
}

// Generate implements llm.Generator.
func (g *TimeoutGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	return WithTimeout(ctx, g.config, func(ctx context.Context) (string, error) {
		return g.next.Generate(ctx, instruction, prompt)
	})
}

func timeoutError(cause error, d time.Duration) *errors.MentorError {
	return errors.New(errors.CodeTimeout, "text generation exceeded timeout", cause).
		WithContext("timeout", d.String()).
		WithRecoverable(true)
}

var _ llm.Generator = (*TimeoutGenerator)(nil)
