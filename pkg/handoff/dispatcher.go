// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package handoff routes user requests to the career roles and chains their
// outputs. A Dispatcher is built once and shared; every caller works through
// its own Session, which owns the interaction history.
package handoff

import (
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/careermentor/pkg/agent"
	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
	"github.com/jllopis/careermentor/pkg/memory"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

// ChainMode selects how the smart flow picks the follow-up roles after a
// career answer.
type ChainMode string

const (
	// ChainCanonical invokes Skill, Job and Resource in that order without
	// asking the classifier again.
	ChainCanonical ChainMode = "canonical"
	// ChainReclassify runs three full handoffs on the derived career, so the
	// classifier picks each follow-up role and roles may repeat.
	ChainReclassify ChainMode = "reclassify"
)

// ParseChainMode validates a chain mode name. Empty selects ChainCanonical.
func ParseChainMode(s string) (ChainMode, error) {
	switch ChainMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ChainCanonical:
		return ChainCanonical, nil
	case ChainReclassify:
		return ChainReclassify, nil
	default:
		return "", errors.InvalidArgument("unknown chain mode").WithContext("chain_mode", s)
	}
}

// Flow names used in telemetry.
const (
	ModeSingle  = "single"
	ModeSmart   = "smart"
	ModeManual  = "manual"
	ModeClassic = "classic"
)

// Dispatcher holds the immutable role agents and the classifier. It is safe
// for concurrent use by any number of sessions.
type Dispatcher struct {
	agents       map[core.Role]*agent.RoleAgent
	classifier   *Classifier
	catalog      agent.Catalog
	chainMode    ChainMode
	recordDirect bool
	tracer       trace.Tracer
	logger       *slog.Logger
	metrics      *telemetry.HandoffMetrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithChainMode selects the smart-flow chaining strategy.
func WithChainMode(mode ChainMode) Option {
	return func(d *Dispatcher) error {
		m, err := ParseChainMode(string(mode))
		if err != nil {
			return err
		}
		d.chainMode = m
		return nil
	}
}

// WithRecordDirect makes manual and classic invocations append to the
// session history.
func WithRecordDirect(enabled bool) Option {
	return func(d *Dispatcher) error {
		d.recordDirect = enabled
		return nil
	}
}

// WithCatalog replaces the built-in role definitions.
func WithCatalog(cat agent.Catalog) Option {
	return func(d *Dispatcher) error {
		d.catalog = cat
		return nil
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		d.logger = logger
		return nil
	}
}

// WithMetrics attaches handoff metrics. Nil disables them.
func WithMetrics(m *telemetry.HandoffMetrics) Option {
	return func(d *Dispatcher) error {
		d.metrics = m
		return nil
	}
}

// New builds a Dispatcher whose roles and classifier share generator.
func New(generator llm.Generator, opts ...Option) (*Dispatcher, error) {
	if generator == nil {
		return nil, errors.InvalidArgument("dispatcher generator is required")
	}
	d := &Dispatcher{chainMode: ChainCanonical}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.catalog == nil {
		d.catalog = agent.DefaultCatalog()
	}
	d.tracer = otel.Tracer(telemetry.InstrumentationName + "/handoff")

	agents, err := d.catalog.Build(generator, agent.WithLogger(d.logger))
	if err != nil {
		return nil, err
	}
	d.agents = agents
	d.classifier = &Classifier{
		generator: generator,
		tracer:    d.tracer,
		logger:    d.logger,
		metrics:   d.metrics,
	}
	return d, nil
}

// NewSession starts an isolated session with an empty history.
func (d *Dispatcher) NewSession() *Session {
	return d.SessionWithID(uuid.New().String())
}

// SessionWithID starts a session with a caller-chosen identifier.
func (d *Dispatcher) SessionWithID(id string) *Session {
	return &Session{
		id:      id,
		d:       d,
		history: memory.NewHistory(id),
	}
}

// Classifier returns the dispatcher's intent classifier.
func (d *Dispatcher) Classifier() *Classifier { return d.classifier }

// Agent returns the agent bound to role.
func (d *Dispatcher) Agent(role core.Role) (*agent.RoleAgent, bool) {
	a, ok := d.agents[role]
	return a, ok
}

// ChainMode reports the configured chaining strategy.
func (d *Dispatcher) ChainMode() ChainMode { return d.chainMode }

// RecordDirect reports whether manual and classic calls are recorded.
func (d *Dispatcher) RecordDirect() bool { return d.recordDirect }

// firstLine returns the first line of the trimmed text, itself trimmed.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// resolveField picks the career carried in hctx, falling back to input.
func resolveField(input string, hctx map[string]string) string {
	if career, ok := hctx[memory.ContextCareer]; ok {
		return career
	}
	return input
}
