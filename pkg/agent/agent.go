// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements the four specialised career roles. Each agent
// wraps a fixed instruction and a one-field prompt template and delegates to
// an llm.Generator.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

// RoleAgent is an immutable role definition bound to a generator.
type RoleAgent struct {
	role        core.Role
	instruction string
	template    string
	generator   llm.Generator
	tracer      trace.Tracer
	logger      *slog.Logger
}

// Option configures a RoleAgent instance.
type Option func(*RoleAgent) error

// New creates a RoleAgent for role. The instruction and prompt template
// default to the built-in catalogue entry for the role.
func New(role core.Role, generator llm.Generator, opts ...Option) (*RoleAgent, error) {
	if !role.Valid() {
		return nil, errors.InvalidArgument("unknown role").WithContext("role", string(role))
	}
	if generator == nil {
		return nil, errors.InvalidArgument("agent generator is required").WithContext("role", string(role))
	}
	def := DefaultCatalog()[role]
	a := &RoleAgent{
		role:        role,
		instruction: def.Instructions,
		template:    def.Prompt,
		generator:   generator,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if err := validateTemplate(a.template); err != nil {
		return nil, err.WithContext("role", string(role))
	}
	if a.tracer == nil {
		a.tracer = otel.Tracer(telemetry.InstrumentationName + "/agent")
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// WithInstruction overrides the system instruction.
func WithInstruction(instruction string) Option {
	return func(a *RoleAgent) error {
		if strings.TrimSpace(instruction) == "" {
			return errors.InvalidArgument("agent instruction must not be empty")
		}
		a.instruction = instruction
		return nil
	}
}

// WithPrompt overrides the prompt template. It must contain exactly one %s.
func WithPrompt(template string) Option {
	return func(a *RoleAgent) error {
		a.template = template
		return nil
	}
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *RoleAgent) error {
		a.logger = logger
		return nil
	}
}

// Role returns the agent role.
func (a *RoleAgent) Role() core.Role { return a.role }

// Instruction returns the fixed system instruction.
func (a *RoleAgent) Instruction() string { return a.instruction }

// Prompt renders the prompt for field.
func (a *RoleAgent) Prompt(field string) string {
	return fmt.Sprintf(a.template, field)
}

// Invoke sends the rendered prompt to the generator and returns the raw
// output. Failures are returned as external service errors.
func (a *RoleAgent) Invoke(ctx context.Context, field string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "agent.invoke", trace.WithAttributes(
		attribute.String(telemetry.AttrHandoffRole, string(a.role)),
	))
	defer span.End()

	out, err := a.generator.Generate(ctx, a.instruction, a.Prompt(field))
	if err != nil {
		err = a.wrapError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.logger.ErrorContext(ctx, "agent.invoke.error",
			slog.String("role", string(a.role)),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	a.logger.DebugContext(ctx, "agent.invoke.complete",
		slog.String("role", string(a.role)),
		slog.Int("response_len", len(out)),
	)
	return out, nil
}

// wrapError returns a new error tagged with the role. The generator's error
// is kept as the cause and never modified, since one error value may be
// returned to several concurrent invocations.
func (a *RoleAgent) wrapError(err error) *errors.MentorError {
	if me, ok := errors.As(err); ok && (me.Code == errors.CodeExternalService || me.Code == errors.CodeTimeout) {
		return errors.New(me.Code, string(a.role)+" invocation failed", err).
			WithContext("role", string(a.role)).
			WithRecoverable(me.Recoverable)
	}
	return errors.ExternalService(err, "agent").WithContext("role", string(a.role))
}

func validateTemplate(template string) *errors.MentorError {
	if n := strings.Count(template, "%s"); n != 1 || strings.Count(template, "%") != 1 {
		return errors.InvalidArgument("prompt template must contain exactly one %s").
			WithContext("template", template)
	}
	return nil
}
