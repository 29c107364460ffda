// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package handoff

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/memory"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

// Step is the outcome of one classifier-driven handoff.
type Step struct {
	Role           core.Role      `json:"role"`
	Response       string         `json:"response"`
	Next           core.Role      `json:"next"`
	Classification Classification `json:"classification"`
}

// ChainEntry is one follow-up answer of the smart flow.
type ChainEntry struct {
	Role     core.Role `json:"role"`
	Response string    `json:"response"`
}

// Result is returned by the single-shot and smart flows.
type Result struct {
	PrimaryRole     core.Role      `json:"primary_role"`
	PrimaryResponse string         `json:"primary_response"`
	SuggestedNext   core.Role      `json:"suggested_next"`
	Chain           []ChainEntry   `json:"chain"`
	Classification  Classification `json:"classification"`
	// Career is the first career line used as chain context, if any.
	Career string `json:"career,omitempty"`
}

// ClassicResult is returned by the classic parallel flow.
type ClassicResult struct {
	Careers   string `json:"careers"`
	Career    string `json:"career"`
	Skills    string `json:"skills"`
	Jobs      string `json:"jobs"`
	Resources string `json:"resources"`
}

// Session is one caller's view of the dispatcher. History recorded through a
// session is never visible to another.
type Session struct {
	id      string
	d       *Dispatcher
	history *memory.History
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Handoff classifies input, invokes the selected role with the career from
// hctx (or input when absent) and records the interaction.
func (s *Session) Handoff(ctx context.Context, input string, hctx map[string]string) (Step, error) {
	return s.handoff(ctx, input, hctx, ModeSingle)
}

func (s *Session) handoff(ctx context.Context, input string, hctx map[string]string, mode string) (Step, error) {
	cl, err := s.d.classifier.Classify(ctx, input)
	if err != nil {
		s.d.metrics.RecordError(ctx, err, "classifier")
		return Step{}, err
	}

	out, err := s.invoke(ctx, cl.Role, resolveField(input, hctx), mode)
	if err != nil {
		return Step{}, err
	}

	s.history.Append(memory.Interaction{
		UserInput: input,
		Role:      cl.Role,
		Response:  out,
		Context:   hctx,
	})
	return Step{
		Role:           cl.Role,
		Response:       out,
		Next:           core.Next(cl.Role),
		Classification: cl,
	}, nil
}

func (s *Session) invoke(ctx context.Context, role core.Role, field, mode string) (string, error) {
	a, ok := s.d.Agent(role)
	if !ok {
		// Unreachable with a validated role.
		a, _ = s.d.Agent(core.DefaultRole)
	}
	out, err := a.Invoke(ctx, field)
	if err != nil {
		s.d.metrics.RecordError(ctx, err, "agent")
		return "", err
	}
	s.d.metrics.RecordHandoff(ctx, string(role), mode)
	return out, nil
}

// Process runs one handoff and reports the suggested successor. The chain is
// always empty.
func (s *Session) Process(ctx context.Context, input string) (Result, error) {
	ctx, span, start := s.startSpan(ctx, "handoff.process", ModeSingle, input)
	defer span.End()

	step, err := s.handoff(ctx, input, nil, ModeSingle)
	if err != nil {
		s.fail(ctx, span, ModeSingle, err)
		return Result{}, err
	}
	span.SetAttributes(telemetry.RoutingAttributes(string(step.Role), string(step.Next))...)
	s.finish(ctx, span, ModeSingle, start)
	return Result{
		PrimaryRole:     step.Role,
		PrimaryResponse: step.Response,
		SuggestedNext:   step.Next,
		Chain:           []ChainEntry{},
		Classification:  step.Classification,
	}, nil
}

// Smart runs the primary handoff and, when it lands on the career role with a
// non-empty answer, chains three follow-ups on the first suggested career.
// Any failure aborts the flow and no partial result is returned.
func (s *Session) Smart(ctx context.Context, input string) (Result, error) {
	ctx, span, start := s.startSpan(ctx, "handoff.smart", ModeSmart, input)
	defer span.End()

	primary, err := s.handoff(ctx, input, nil, ModeSmart)
	if err != nil {
		s.fail(ctx, span, ModeSmart, err)
		return Result{}, err
	}
	res := Result{
		PrimaryRole:     primary.Role,
		PrimaryResponse: primary.Response,
		SuggestedNext:   primary.Next,
		Chain:           []ChainEntry{},
		Classification:  primary.Classification,
	}
	span.SetAttributes(telemetry.RoutingAttributes(string(primary.Role), string(primary.Next))...)

	if primary.Role != core.RoleCareer || primary.Response == "" {
		s.finish(ctx, span, ModeSmart, start)
		return res, nil
	}

	career := firstLine(primary.Response)
	if career == "" {
		career = input
	}
	hctx := map[string]string{memory.ContextCareer: career}
	res.Career = career

	s.d.logger.InfoContext(ctx, "handoff.chain.start",
		slog.String("session_id", s.id),
		slog.String("career", career),
		slog.String("chain_mode", string(s.d.chainMode)),
	)

	switch s.d.chainMode {
	case ChainReclassify:
		for i := 0; i < 3; i++ {
			step, err := s.handoff(ctx, career, hctx, ModeSmart)
			if err != nil {
				s.fail(ctx, span, ModeSmart, err)
				return Result{}, err
			}
			res.Chain = append(res.Chain, ChainEntry{Role: step.Role, Response: step.Response})
		}
	default:
		for _, role := range core.ChainAfter(core.RoleCareer) {
			out, err := s.invoke(ctx, role, career, ModeSmart)
			if err != nil {
				s.fail(ctx, span, ModeSmart, err)
				return Result{}, err
			}
			s.history.Append(memory.Interaction{
				UserInput: career,
				Role:      role,
				Response:  out,
				Context:   hctx,
			})
			res.Chain = append(res.Chain, ChainEntry{Role: role, Response: out})
		}
	}

	span.SetAttributes(telemetry.ChainAttributes(string(s.d.chainMode), len(res.Chain))...)
	s.finish(ctx, span, ModeSmart, start)
	return res, nil
}

// Manual invokes target directly, bypassing the classifier. The field is the
// career in hctx when present, otherwise input. Unknown targets fail before
// any generation call.
func (s *Session) Manual(ctx context.Context, input, target string, hctx map[string]string) (string, error) {
	role, err := core.ParseRole(target)
	if err != nil {
		return "", err
	}

	ctx, span, start := s.startSpan(ctx, "handoff.manual", ModeManual, input)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrHandoffRole, string(role)))

	out, err := s.invoke(ctx, role, resolveField(input, hctx), ModeManual)
	if err != nil {
		s.fail(ctx, span, ModeManual, err)
		return "", err
	}
	if s.d.recordDirect {
		s.history.Append(memory.Interaction{
			UserInput: input,
			Role:      role,
			Response:  out,
			Context:   hctx,
			Direct:    true,
		})
	}
	s.finish(ctx, span, ModeManual, start)
	return out, nil
}

// Classic asks the career role once, then runs Skill, Job and Resource
// concurrently on the first suggested career. The first failure cancels the
// remaining calls and fails the whole flow.
func (s *Session) Classic(ctx context.Context, input string) (ClassicResult, error) {
	ctx, span, start := s.startSpan(ctx, "handoff.classic", ModeClassic, input)
	defer span.End()

	careers, err := s.invoke(ctx, core.RoleCareer, input, ModeClassic)
	if err != nil {
		s.fail(ctx, span, ModeClassic, err)
		return ClassicResult{}, err
	}
	career := firstLine(careers)

	var skills, jobs, resources string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.invoke(gctx, core.RoleSkill, career, ModeClassic)
		skills = out
		return err
	})
	g.Go(func() error {
		out, err := s.invoke(gctx, core.RoleJob, career, ModeClassic)
		jobs = out
		return err
	})
	g.Go(func() error {
		out, err := s.invoke(gctx, core.RoleResource, career, ModeClassic)
		resources = out
		return err
	})
	if err := g.Wait(); err != nil {
		s.fail(ctx, span, ModeClassic, err)
		return ClassicResult{}, err
	}

	res := ClassicResult{
		Careers:   careers,
		Career:    career,
		Skills:    skills,
		Jobs:      jobs,
		Resources: resources,
	}
	if s.d.recordDirect {
		hctx := map[string]string{memory.ContextCareer: career}
		s.recordDirect(input, core.RoleCareer, careers, nil)
		s.recordDirect(career, core.RoleSkill, skills, hctx)
		s.recordDirect(career, core.RoleJob, jobs, hctx)
		s.recordDirect(career, core.RoleResource, resources, hctx)
	}
	s.finish(ctx, span, ModeClassic, start)
	return res, nil
}

func (s *Session) recordDirect(input string, role core.Role, out string, hctx map[string]string) {
	s.history.Append(memory.Interaction{
		UserInput: input,
		Role:      role,
		Response:  out,
		Context:   hctx,
		Direct:    true,
	})
}

// History returns a snapshot of every recorded interaction.
func (s *Session) History() []memory.Interaction { return s.history.All() }

// Recent returns the last n recorded interactions.
func (s *Session) Recent(n int) []memory.Interaction { return s.history.Recent(n) }

// Clear empties the history. It is idempotent.
func (s *Session) Clear() { s.history.Clear() }

func (s *Session) startSpan(ctx context.Context, name, mode, input string) (context.Context, trace.Span, time.Time) {
	ctx = telemetry.WithSessionID(ctx, s.id)
	ctx, span := s.d.tracer.Start(ctx, name, trace.WithAttributes(
		telemetry.HandoffAttributes(s.id, mode, input)...,
	))
	return ctx, span, time.Now()
}

func (s *Session) finish(ctx context.Context, span trace.Span, mode string, start time.Time) {
	span.SetAttributes(attribute.Int(telemetry.AttrHistoryCount, s.history.Len()))
	span.SetStatus(codes.Ok, "")
	s.d.metrics.RecordDuration(ctx, mode, float64(time.Since(start).Microseconds())/1000)
}

func (s *Session) fail(ctx context.Context, span trace.Span, mode string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.d.logger.ErrorContext(ctx, "handoff."+mode+".error",
		slog.String("session_id", s.id),
		slog.String("error", err.Error()),
	)
}
