// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStubRoutesByInstruction(t *testing.T) {
	stub := NewStubGenerator().
		On(InstructionContains("coordinator"), "SkillAgent").
		On(InstructionContains("skill roadmap"), "1. Learn Go")

	got, err := stub.Generate(context.Background(), "You are a conversation coordinator", "User message: 'x'")
	if err != nil || got != "SkillAgent" {
		t.Fatalf("classifier reply = %q, %v", got, err)
	}
	got, err = stub.Generate(context.Background(), "Create a detailed skill roadmap", "Show skill roadmap for x.")
	if err != nil || got != "1. Learn Go" {
		t.Fatalf("agent reply = %q, %v", got, err)
	}
	if stub.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", stub.CallCount())
	}
}

func TestStubSequenceRepeatsLast(t *testing.T) {
	stub := NewStubGenerator().OnSequence(PromptContains("q"), "a", "b")

	var got []string
	for i := 0; i < 3; i++ {
		out, _ := stub.Generate(context.Background(), "", "q")
		got = append(got, out)
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "b" {
		t.Errorf("unexpected sequence %v", got)
	}

	stub.Reset()
	if out, _ := stub.Generate(context.Background(), "", "q"); out != "a" {
		t.Errorf("Reset should rewind sequences, got %q", out)
	}
	if stub.CallCount() != 1 {
		t.Errorf("Reset should clear calls, got %d", stub.CallCount())
	}
}

func TestStubUnmatchedAndDefault(t *testing.T) {
	stub := NewStubGenerator()
	if _, err := stub.Generate(context.Background(), "", "anything"); err == nil {
		t.Error("expected error for unmatched call")
	}

	stub.WithDefault("fallback")
	if out, err := stub.Generate(context.Background(), "", "anything"); err != nil || out != "fallback" {
		t.Errorf("default reply = %q, %v", out, err)
	}
}

func TestStubFailOn(t *testing.T) {
	boom := errors.New("boom")
	stub := NewStubGenerator().FailOn(PromptContains("job"), boom).WithDefault("ok")

	if _, err := stub.Generate(context.Background(), "", "List job roles in x."); !errors.Is(err, boom) {
		t.Errorf("expected scripted error, got %v", err)
	}
	if out, _ := stub.Generate(context.Background(), "", "other"); out != "ok" {
		t.Errorf("expected default for other prompts, got %q", out)
	}
}

func TestStubBlockOnHonoursCancellation(t *testing.T) {
	stub := NewStubGenerator().BlockOn(PromptContains("slow"))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := stub.Generate(ctx, "", "slow")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestStubCountMatchingAndFunc(t *testing.T) {
	stub := NewStubGenerator().WithFunc(func(_ context.Context, c Call) (string, error) {
		return "echo: " + c.Prompt, nil
	})
	_, _ = stub.Generate(context.Background(), "coordinator", "one")
	out, _ := stub.Generate(context.Background(), "mentor", "two")

	if out != "echo: two" {
		t.Errorf("WithFunc reply = %q", out)
	}
	if n := stub.CountMatching(InstructionContains("coordinator")); n != 1 {
		t.Errorf("expected 1 coordinator call, got %d", n)
	}
	calls := stub.Calls()
	if len(calls) != 2 || calls[1].Prompt != "two" {
		t.Errorf("unexpected captured calls %+v", calls)
	}
}
