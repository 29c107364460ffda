// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides logging, tracing and metrics for the dispatcher.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for handoff telemetry.
const (
	// Session attributes
	AttrSessionID    = "mentor.session.id"
	AttrHistoryCount = "mentor.history.count"

	// Handoff attributes
	AttrHandoffMode      = "mentor.handoff.mode" // single, smart, manual, classic
	AttrHandoffRole      = "mentor.handoff.role"
	AttrHandoffNext      = "mentor.handoff.next"
	AttrHandoffChainLen  = "mentor.handoff.chain_length"
	AttrHandoffChainMode = "mentor.handoff.chain_mode"
	AttrHandoffInput     = "mentor.handoff.input"

	// Classifier attributes
	AttrClassifierRaw     = "mentor.classifier.raw"
	AttrClassifierCoerced = "mentor.classifier.coerced"

	// LLM attributes (extending standard gen_ai conventions)
	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
	AttrLLMTokensTotal  = "gen_ai.usage.total_tokens"
	AttrLLMDurationMs   = "gen_ai.duration_ms"
)

const maxAttrLen = 200

// HandoffAttributes returns attributes for a dispatcher span.
func HandoffAttributes(sessionID, mode, input string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHandoffMode, mode),
	}
	if sessionID != "" {
		attrs = append(attrs, attribute.String(AttrSessionID, sessionID))
	}
	if input != "" {
		attrs = append(attrs, attribute.String(AttrHandoffInput, truncate(input, maxAttrLen)))
	}
	return attrs
}

// RoutingAttributes describes the role chosen for a step and its successor.
func RoutingAttributes(role, next string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHandoffRole, role),
	}
	if next != "" {
		attrs = append(attrs, attribute.String(AttrHandoffNext, next))
	}
	return attrs
}

// ChainAttributes describes a smart flow chain.
func ChainAttributes(chainMode string, length int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrHandoffChainMode, chainMode),
		attribute.Int(AttrHandoffChainLen, length),
	}
}

// ClassifierAttributes records the raw classifier output and whether it was coerced.
func ClassifierAttributes(raw string, coerced bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrClassifierRaw, truncate(raw, maxAttrLen)),
		attribute.Bool(AttrClassifierCoerced, coerced),
	}
}

// LLMAttributes returns attributes for LLM call spans.
func LLMAttributes(model, provider string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrLLMModel, model))
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	return attrs
}

// LLMUsageAttributes returns token usage attributes.
func LLMUsageAttributes(inputTokens, outputTokens int, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if inputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensInput, inputTokens))
	}
	if outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensOutput, outputTokens))
	}
	if inputTokens > 0 || outputTokens > 0 {
		attrs = append(attrs, attribute.Int(AttrLLMTokensTotal, inputTokens+outputTokens))
	}
	if durationMs > 0 {
		attrs = append(attrs, attribute.Float64(AttrLLMDurationMs, durationMs))
	}
	return attrs
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
