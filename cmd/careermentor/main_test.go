// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/jllopis/careermentor/pkg/config"
	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/handoff"
	"github.com/jllopis/careermentor/pkg/llm"
	mentortest "github.com/jllopis/careermentor/pkg/testing"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func scriptedCareer() *mentortest.StubGenerator {
	return mentortest.NewStubGenerator().
		On(mentortest.InstructionContains("conversation coordinator"), "CareerAgent").
		On(mentortest.InstructionContains("career expert"), "Game Developer\nLevel Designer").
		On(mentortest.InstructionContains("Create a detailed skill roadmap"), "1. C++").
		On(mentortest.InstructionContains("job market guide"), "- Gameplay Programmer").
		On(mentortest.InstructionContains("education advisor"), "- Godot docs")
}

func execute(t *testing.T, stub *mentortest.StubGenerator, stdin string, args ...string) (string, error) {
	t.Helper()
	factory := func(context.Context, config.LLMConfig, *slog.Logger) (llm.Generator, error) {
		return stub, nil
	}

	root := newRootCmd(factory, io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSmartCommandPrintsChain(t *testing.T) {
	out, err := execute(t, scriptedCareer(), "", "smart", "I", "like", "games")
	if err != nil {
		t.Fatalf("smart: %v", err)
	}
	for _, want := range []string{"CareerAgent handled your request", "Handoff chain for Game Developer", "1. C++", "- Gameplay Programmer", "- Godot docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSmartCommandJSON(t *testing.T) {
	out, err := execute(t, scriptedCareer(), "", "--json", "smart", "games")
	if err != nil {
		t.Fatalf("smart: %v", err)
	}
	var res handoff.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(res.Chain) != 3 || res.Career != "Game Developer" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestManualCommandSkipsClassifier(t *testing.T) {
	stub := scriptedCareer()
	out, err := execute(t, stub, "", "manual", "--role", "JobAgent", "--career", "Animator", "anything")
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	if !strings.Contains(out, "- Gameplay Programmer") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if n := stub.CountMatching(mentortest.InstructionContains("conversation coordinator")); n != 0 {
		t.Errorf("classifier called %d times", n)
	}
	if got := stub.Calls()[0].Prompt; got != "List job roles in Animator." {
		t.Errorf("prompt = %q", got)
	}
}

func TestManualCommandRejectsUnknownRole(t *testing.T) {
	stub := scriptedCareer()
	_, err := execute(t, stub, "", "manual", "--role", "ChefAgent", "cooking")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
	if stub.CallCount() != 0 {
		t.Errorf("expected no generation calls, got %d", stub.CallCount())
	}
}

func TestClassicCommand(t *testing.T) {
	out, err := execute(t, scriptedCareer(), "", "classic", "games")
	if err != nil {
		t.Fatalf("classic: %v", err)
	}
	if !strings.Contains(out, "Suggested career path: Game Developer") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRolesCommandNeedsNoBackend(t *testing.T) {
	factory := func(context.Context, config.LLMConfig, *slog.Logger) (llm.Generator, error) {
		t.Fatal("roles must not build a generator")
		return nil, nil
	}
	root := newRootCmd(factory, io.Discard)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"roles", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("roles: %v", err)
	}
	var manifests []core.RoleManifest
	if err := json.Unmarshal(out.Bytes(), &manifests); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(manifests) != 4 {
		t.Fatalf("expected 4 roles, got %d", len(manifests))
	}
}

func TestChatSessionKeepsHistory(t *testing.T) {
	stdin := strings.Join([]string{
		"I like games",
		"/history",
		"/agent SkillAgent",
		"Level Designer",
		"/clear",
		"/history",
		"exit",
	}, "\n")
	out, err := execute(t, scriptedCareer(), stdin, "chat")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	for _, want := range []string{
		"3. 📚 ResourceAgent: Game Developer",
		"mode: manual (SkillAgent)",
		"SkillAgent response:",
		"History cleared!",
		"No conversation history yet.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigFlagsReachGenerator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var got config.LLMConfig
	factory := func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llm.Generator, error) {
		got = cfg
		return scriptedCareer(), nil
	}
	root := newRootCmd(factory, io.Discard)
	root.SetOut(io.Discard)
	root.SetArgs([]string{"--config", path, "--set", "llm.temperature=0.2", "ask", "games"})
	if err := root.Execute(); err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got.Model != "from-file" {
		t.Errorf("model = %q", got.Model)
	}
	if got.Temperature != 0.2 {
		t.Errorf("temperature = %v", got.Temperature)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	_, err := execute(t, scriptedCareer(), "", "--set", "llm.provider=nope", "ask", "games")
	if err == nil {
		t.Fatal("expected validation error")
	}
}
