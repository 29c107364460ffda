// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/llm"
)

// Definition is the instruction and prompt template of one role.
type Definition struct {
	Instructions string `yaml:"instructions" json:"instructions"`
	Prompt       string `yaml:"prompt" json:"prompt"`
}

// Catalog maps every role to its definition.
type Catalog map[core.Role]Definition

// DefaultCatalog returns a fresh copy of the built-in role definitions.
func DefaultCatalog() Catalog {
	return Catalog{
		core.RoleCareer: {
			Instructions: "You are a career expert. Suggest 2–3 professional career paths based on a user's interest.\n" +
				"Only give one per line.",
			Prompt: "Suggest career paths for someone interested in %s.",
		},
		core.RoleSkill: {
			Instructions: "You are a career mentor. Create a detailed skill roadmap for a given career field.\n" +
				"Provide a step-by-step learning path with key skills, tools, and milestones.",
			Prompt: "Show skill roadmap for %s.",
		},
		core.RoleJob: {
			Instructions: "You are a job market guide. List 3–4 real-world jobs related to a field in bullet points.",
			Prompt:       "List job roles in %s.",
		},
		core.RoleResource: {
			Instructions: "You are an education advisor. Provide free learning resources and websites for a given career path.\n" +
				"Include popular platforms like Coursera, edX, freeCodeCamp, and relevant YouTube channels.",
			Prompt: "Give free learning resources for %s.",
		},
	}
}

// LoadCatalog reads role overrides from a YAML file keyed by role name:
//
//	SkillAgent:
//	  instructions: You are a senior mentor...
//	  prompt: Give a 90 day plan for %s.
//
// Roles missing from the file keep their defaults. An empty path returns the
// defaults.
func LoadCatalog(path string) (Catalog, error) {
	cat := DefaultCatalog()
	if path == "" {
		return cat, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidArgument, "read role catalogue", err).
			WithContext("path", path)
	}
	return ParseCatalog(raw)
}

// ParseCatalog merges YAML overrides into the default catalogue.
func ParseCatalog(raw []byte) (Catalog, error) {
	var overrides map[string]Definition
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, errors.New(errors.CodeInvalidArgument, "parse role catalogue", err)
	}

	cat := DefaultCatalog()
	for name, def := range overrides {
		role, err := core.ParseRole(name)
		if err != nil {
			return nil, err
		}
		merged := cat[role]
		if def.Instructions != "" {
			merged.Instructions = def.Instructions
		}
		if def.Prompt != "" {
			if verr := validateTemplate(def.Prompt); verr != nil {
				return nil, verr.WithContext("role", name)
			}
			merged.Prompt = def.Prompt
		}
		cat[role] = merged
	}
	return cat, nil
}

// Build creates one RoleAgent per role from the catalogue.
func (c Catalog) Build(generator llm.Generator, opts ...Option) (map[core.Role]*RoleAgent, error) {
	agents := make(map[core.Role]*RoleAgent, len(core.Roles()))
	for _, role := range core.Roles() {
		def, ok := c[role]
		if !ok {
			return nil, errors.InvalidArgument(fmt.Sprintf("catalogue has no definition for %s", role))
		}
		roleOpts := append([]Option{WithInstruction(def.Instructions), WithPrompt(def.Prompt)}, opts...)
		a, err := New(role, generator, roleOpts...)
		if err != nil {
			return nil, err
		}
		agents[role] = a
	}
	return agents, nil
}
