// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jllopis/careermentor/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "ollama" {
		t.Errorf("expected default provider ollama, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %s", cfg.LLM.Timeout)
	}
	if cfg.Handoff.ChainMode != "canonical" {
		t.Errorf("expected canonical chain mode, got %s", cfg.Handoff.ChainMode)
	}
	if cfg.Handoff.RecordDirect {
		t.Error("record_direct should default to false")
	}
	if cfg.Telemetry.Exporter != "none" {
		t.Errorf("expected telemetry exporter none, got %s", cfg.Telemetry.Exporter)
	}
	if cfg.Telemetry.SampleRatio != 1 || cfg.Telemetry.MetricInterval != time.Minute {
		t.Errorf("unexpected telemetry defaults %+v", cfg.Telemetry)
	}
	if cfg.LLM.Model != "" || cfg.LLM.BaseURL != "" {
		t.Errorf("model and base_url should default to the provider's own, got %q %q", cfg.LLM.Model, cfg.LLM.BaseURL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("MENTOR_LLM_PROVIDER", "openai")
	t.Setenv("MENTOR_LLM_BASE_URL", "https://api.example.com/v1")
	t.Setenv("MENTOR_HANDOFF_RECORD_DIRECT", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai from env, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.BaseURL != "https://api.example.com/v1" {
		t.Errorf("expected base_url from env, got %s", cfg.LLM.BaseURL)
	}
	if !cfg.Handoff.RecordDirect {
		t.Error("expected record_direct from env")
	}
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
llm:
  provider: gemini
  model: gemini-2.0-flash
  timeout: 5s
handoff:
  chain_mode: reclassify
`)
	t.Setenv("MENTOR_LLM_MODEL", "gemini-2.5-pro")

	cfg, err := LoadWithCLI([]string{"--config", path, "--set", "llm.provider=anthropic"})
	if err != nil {
		t.Fatalf("LoadWithCLI failed: %v", err)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("--set should win, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("env should override file, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Errorf("file should override defaults, got %s", cfg.LLM.Timeout)
	}
	if cfg.Handoff.ChainMode != "reclassify" {
		t.Errorf("expected reclassify from file, got %s", cfg.Handoff.ChainMode)
	}
}

func TestLoadWithProfile(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "config.yaml", "llm:\n  provider: ollama\nlog:\n  level: info\n")
	writeFile(t, dir, "config.dev.yaml", "log:\n  level: debug\n")

	tests := []struct {
		name      string
		args      []string
		wantLevel string
	}{
		{"profile flag", []string{"--config", base, "--profile", "dev"}, "debug"},
		{"env flag alias", []string{"--config", base, "--env", "dev"}, "debug"},
		{"profile with equals", []string{"--config=" + base, "--profile=dev"}, "debug"},
		{"missing profile file", []string{"--config", base, "--profile", "prod"}, "info"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadWithCLI(tc.args)
			if err != nil {
				t.Fatalf("LoadWithCLI failed: %v", err)
			}
			if cfg.Log.Level != tc.wantLevel {
				t.Errorf("level: got %s, want %s", cfg.Log.Level, tc.wantLevel)
			}
		})
	}

	cfg, err := LoadWithProfile(base, "dev")
	if err != nil || cfg.Log.Level != "debug" {
		t.Errorf("LoadWithProfile: level %v, err %v", cfg, err)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	cfg, err := LoadWithOverrides("", []string{"llm.temperature=0.2", "server.addr=:9090"})
	if err != nil {
		t.Fatalf("LoadWithOverrides failed: %v", err)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", cfg.LLM.Temperature)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if _, err := LoadWithOverrides("", []string{"novalue"}); err == nil {
		t.Error("expected error for malformed override")
	}
}

func TestParseCLIOverridesErrors(t *testing.T) {
	for _, args := range [][]string{{"--config"}, {"--set"}, {"--set", "invalid"}, {"--set", "=x"}} {
		if _, err := parseCLIOverrides(args); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
	opts, err := parseCLIOverrides([]string{"ask", "--json", "--set", "a.b=c=d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.sets["a.b"] != "c=d" {
		t.Errorf("value should keep everything after the first '=', got %q", opts.sets["a.b"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.IsCode(err, errors.CodeInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"anthropic", func(c *Config) { c.LLM.Provider = "anthropic" }, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "skynet" }, false},
		{"reclassify", func(c *Config) { c.Handoff.ChainMode = "reclassify" }, true},
		{"unknown chain mode", func(c *Config) { c.Handoff.ChainMode = "random" }, false},
		{"otlp without endpoint", func(c *Config) { c.Telemetry.Exporter = "otlp" }, false},
		{"otlp with endpoint", func(c *Config) {
			c.Telemetry.Exporter = "otlp"
			c.Telemetry.OTLPEndpoint = "localhost:4317"
		}, true},
		{"unknown exporter", func(c *Config) { c.Telemetry.Exporter = "zipkin" }, false},
		{"negative timeout", func(c *Config) { c.LLM.Timeout = -time.Second }, false},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, false},
		{"sample ratio half", func(c *Config) { c.Telemetry.SampleRatio = 0.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.IsCode(err, errors.CodeInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}
