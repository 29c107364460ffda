// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/careermentor/pkg/errors"
)

// HandoffMetrics counts dispatcher activity. A nil *HandoffMetrics is a valid
// no-op recorder.
type HandoffMetrics struct {
	// handoffCounter counts agent invocations by role and mode
	handoffCounter metric.Int64Counter

	// coercedCounter counts classifier answers replaced by the default role
	coercedCounter metric.Int64Counter

	// errorCounter counts failures by code and component
	errorCounter metric.Int64Counter

	// durationHist records flow latency in milliseconds by mode
	durationHist metric.Float64Histogram
}

// NewHandoffMetrics creates the dispatcher instruments on the global meter provider.
func NewHandoffMetrics(ctx context.Context) (*HandoffMetrics, error) {
	meter := otel.Meter(InstrumentationName + "/handoff")

	handoffCounter, err := meter.Int64Counter(
		"mentor.handoff.total",
		metric.WithDescription("Agent invocations by role and mode"),
	)
	if err != nil {
		return nil, err
	}

	coercedCounter, err := meter.Int64Counter(
		"mentor.classifier.coerced",
		metric.WithDescription("Classifier outputs outside the role set that were coerced to the default role"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"mentor.errors.total",
		metric.WithDescription("Dispatcher errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"mentor.handoff.duration",
		metric.WithDescription("Flow duration by mode"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &HandoffMetrics{
		handoffCounter: handoffCounter,
		coercedCounter: coercedCounter,
		errorCounter:   errorCounter,
		durationHist:   durationHist,
	}, nil
}

// RecordHandoff counts one agent invocation.
func (m *HandoffMetrics) RecordHandoff(ctx context.Context, role, mode string) {
	if m == nil {
		return
	}
	m.handoffCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("role", role),
			attribute.String("mode", mode),
		),
	)
}

// RecordCoerced counts a classifier answer that fell back to the default role.
func (m *HandoffMetrics) RecordCoerced(ctx context.Context) {
	if m == nil {
		return
	}
	m.coercedCounter.Add(ctx, 1)
}

// RecordError counts err under its error code.
func (m *HandoffMetrics) RecordError(ctx context.Context, err error, component string) {
	if m == nil || err == nil {
		return
	}
	recoverable := "unknown"
	if me, ok := errors.As(err); ok {
		recoverable = me.RecoverableString()
	}
	m.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", string(errors.CodeOf(err))),
			attribute.String("component", component),
			attribute.String("recoverable", recoverable),
		),
	)
}

// RecordDuration records how long a flow took.
func (m *HandoffMetrics) RecordDuration(ctx context.Context, mode string, ms float64) {
	if m == nil {
		return
	}
	m.durationHist.Record(ctx, ms,
		metric.WithAttributes(attribute.String("mode", mode)),
	)
}
