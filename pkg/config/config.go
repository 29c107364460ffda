// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads careermentor settings. Sources are applied in order:
// defaults, YAML file, profile file, MENTOR_* environment, --set overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jllopis/careermentor/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides
// (MENTOR_LLM_PROVIDER -> llm.provider).
const EnvPrefix = "MENTOR_"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Handoff   HandoffConfig   `koanf:"handoff"`
	Server    ServerConfig    `koanf:"server"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Provider    string        `koanf:"provider"` // ollama, openai, gemini, anthropic
	Model       string        `koanf:"model"`    // empty selects the provider default
	BaseURL     string        `koanf:"base_url"` // empty selects the provider endpoint
	APIKey      string        `koanf:"api_key"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"` // 0 disables the caller-level deadline
}

type HandoffConfig struct {
	ChainMode    string `koanf:"chain_mode"` // canonical, reclassify
	RecordDirect bool   `koanf:"record_direct"`
	RolesFile    string `koanf:"roles_file"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type TelemetryConfig struct {
	Exporter       string        `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint   string        `koanf:"otlp_endpoint"`
	OTLPInsecure   bool          `koanf:"otlp_insecure"`
	SampleRatio    float64       `koanf:"sample_ratio"`
	MetricInterval time.Duration `koanf:"metric_interval"`
}

var (
	providers  = []string{"ollama", "openai", "gemini", "anthropic"}
	chainModes = []string{"canonical", "reclassify"}
	exporters  = []string{"none", "stdout", "otlp"}
)

func setDefaults(k *koanf.Koanf) {
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("llm.provider", "ollama")
	k.Set("llm.temperature", 0.7)
	k.Set("llm.timeout", "60s")
	k.Set("handoff.chain_mode", "canonical")
	k.Set("handoff.record_direct", false)
	k.Set("server.addr", ":8080")
	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.sample_ratio", 1.0)
	k.Set("telemetry.metric_interval", "60s")
}

// Load reads defaults, the optional YAML file at path and the environment.
func Load(path string) (*Config, error) {
	return load(path, "", nil)
}

// LoadWithProfile also merges <dir>/config.<profile>.yaml over the base file.
func LoadWithProfile(path, profile string) (*Config, error) {
	return load(path, profile, nil)
}

// LoadWithCLI understands --config, --profile (alias --env) and repeated
// --set key=value flags; unrelated arguments are ignored.
func LoadWithCLI(args []string) (*Config, error) {
	opts, err := parseCLIOverrides(args)
	if err != nil {
		return nil, err
	}
	return load(opts.path, opts.profile, opts.sets)
}

// LoadWithOverrides loads path and applies key=value overrides last.
func LoadWithOverrides(path string, sets []string) (*Config, error) {
	parsed := make(map[string]string, len(sets))
	for _, s := range sets {
		key, value, err := splitOverride(s)
		if err != nil {
			return nil, err
		}
		parsed[key] = value
	}
	return load(path, "", parsed)
}

func load(path, profile string, sets map[string]string) (*Config, error) {
	k := koanf.New(".")
	setDefaults(k)

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.New(errors.CodeInvalidArgument, "load config file", err).
				WithContext("path", path)
		}
	}

	// 2. Profile file next to the base file
	if profile != "" {
		profilePath := profileFile(path, profile)
		if _, err := os.Stat(profilePath); err == nil {
			if err := k.Load(file.Provider(profilePath), yaml.Parser()); err != nil {
				return nil, errors.New(errors.CodeInvalidArgument, "load profile file", err).
					WithContext("path", profilePath)
			}
		}
	}

	// 3. Load from ENV (MENTOR_LLM_BASE_URL -> llm.base_url)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	// 4. CLI overrides
	for key, value := range sets {
		if err := k.Set(key, value); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument, "decode config", err)
	}
	return &cfg, nil
}

// envKey maps MENTOR_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func profileFile(base, profile string) string {
	dir := "."
	if base != "" {
		dir = filepath.Dir(base)
	}
	return filepath.Join(dir, fmt.Sprintf("config.%s.yaml", profile))
}

type cliOptions struct {
	path    string
	profile string
	sets    map[string]string
}

func parseCLIOverrides(args []string) (cliOptions, error) {
	opts := cliOptions{sets: map[string]string{}}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, value, hasValue := strings.Cut(arg, "=")
		switch name {
		case "--config", "--profile", "--env", "--set":
		default:
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return opts, errors.InvalidArgument("missing value for " + name)
			}
			i++
			value = args[i]
		}
		switch name {
		case "--config":
			opts.path = value
		case "--profile", "--env":
			opts.profile = value
		case "--set":
			key, v, err := splitOverride(value)
			if err != nil {
				return opts, err
			}
			opts.sets[key] = v
		}
	}
	return opts, nil
}

func splitOverride(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", errors.InvalidArgument("override must be key=value").WithContext("override", s)
	}
	return key, value, nil
}

// Validate rejects unknown providers, chain modes and exporters.
func (c *Config) Validate() error {
	if !oneOf(c.LLM.Provider, providers) {
		return errors.InvalidArgument("unknown llm provider").WithContext("provider", c.LLM.Provider)
	}
	if !oneOf(strings.ToLower(c.Handoff.ChainMode), chainModes) {
		return errors.InvalidArgument("unknown chain mode").WithContext("chain_mode", c.Handoff.ChainMode)
	}
	if !oneOf(c.Telemetry.Exporter, exporters) {
		return errors.InvalidArgument("unknown telemetry exporter").WithContext("exporter", c.Telemetry.Exporter)
	}
	if c.Telemetry.Exporter == "otlp" && c.Telemetry.OTLPEndpoint == "" {
		return errors.InvalidArgument("telemetry.otlp_endpoint is required for the otlp exporter")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return errors.InvalidArgument("telemetry.sample_ratio must be between 0 and 1")
	}
	if c.LLM.Timeout < 0 {
		return errors.InvalidArgument("llm.timeout must not be negative")
	}
	return nil
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
