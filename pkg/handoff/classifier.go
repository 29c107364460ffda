// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

// CoordinatorInstruction is the fixed instruction sent with every
// classification request.
const CoordinatorInstruction = `You are a conversation coordinator for a career mentoring system. Analyze user messages and determine which agent should handle the request.

Available agents:
- CareerAgent: Suggests career paths based on interests
- SkillAgent: Creates skill roadmaps for specific careers
- JobAgent: Lists job roles in specific fields
- ResourceAgent: Provides learning resources

Respond with ONLY the agent name that should handle this request: CareerAgent, SkillAgent, JobAgent, or ResourceAgent.

Examples:
- "What career should I pursue in tech?" -> CareerAgent
- "I want to become a data scientist, what skills do I need?" -> SkillAgent
- "What jobs are available in marketing?" -> JobAgent
- "Where can I learn Python programming?" -> ResourceAgent`

// Classification is the outcome of routing one input.
type Classification struct {
	Role core.Role `json:"role"`
	// Raw is the classifier output before validation.
	Raw string `json:"raw"`
	// Coerced reports that Raw named no known role and Role fell back to
	// core.DefaultRole.
	Coerced bool `json:"coerced"`
}

// Classifier maps free text to a Role with one generation call.
type Classifier struct {
	generator llm.Generator
	tracer    trace.Tracer
	logger    *slog.Logger
	metrics   *telemetry.HandoffMetrics
}

// ClassifierPrompt renders the classification prompt for input.
func ClassifierPrompt(input string) string {
	return fmt.Sprintf("User message: '%s'", input)
}

// Classify asks the generator which role should handle input. Output that is
// not exactly a role name (after trimming) resolves to core.DefaultRole with
// Coerced set. Generator failures propagate.
func (c *Classifier) Classify(ctx context.Context, input string) (Classification, error) {
	ctx, span := c.tracer.Start(ctx, "handoff.classify")
	defer span.End()

	raw, err := c.generator.Generate(ctx, CoordinatorInstruction, ClassifierPrompt(input))
	if err != nil {
		if !errors.IsCode(err, errors.CodeExternalService) && !errors.IsCode(err, errors.CodeTimeout) {
			err = errors.ExternalService(err, "classifier")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Classification{}, err
	}

	cl := resolve(raw)
	span.SetAttributes(telemetry.ClassifierAttributes(raw, cl.Coerced)...)
	if cl.Coerced {
		c.metrics.RecordCoerced(ctx)
		c.logger.WarnContext(ctx, "handoff.classify.coerced",
			slog.String("raw", raw),
			slog.String("role", string(cl.Role)),
		)
	} else {
		c.logger.DebugContext(ctx, "handoff.classify",
			slog.String("role", string(cl.Role)),
		)
	}
	return cl, nil
}

func resolve(raw string) Classification {
	name := strings.TrimSpace(raw)
	role := core.Role(name)
	if role.Valid() {
		return Classification{Role: role, Raw: raw}
	}
	return Classification{Role: core.DefaultRole, Raw: raw, Coerced: true}
}
