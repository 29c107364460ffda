// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package core defines the role set shared by agents, the dispatcher and the
// presentation layers.
package core

import (
	"fmt"

	"github.com/jllopis/careermentor/pkg/errors"
)

// Role identifies one of the four specialised agents.
type Role string

const (
	RoleCareer   Role = "CareerAgent"
	RoleSkill    Role = "SkillAgent"
	RoleJob      Role = "JobAgent"
	RoleResource Role = "ResourceAgent"
)

// DefaultRole is used whenever classification is ambiguous.
const DefaultRole = RoleCareer

var roles = []Role{RoleCareer, RoleSkill, RoleJob, RoleResource}

// successors is the fixed handoff table. It must stay total over roles.
var successors = map[Role]Role{
	RoleCareer:   RoleSkill,
	RoleSkill:    RoleJob,
	RoleJob:      RoleResource,
	RoleResource: RoleCareer,
}

// suggestions lists the follow-up roles offered after a direct invocation.
var suggestions = map[Role][]Role{
	RoleCareer:   {RoleSkill, RoleJob},
	RoleSkill:    {RoleJob, RoleResource},
	RoleJob:      {RoleResource, RoleSkill},
	RoleResource: {RoleCareer, RoleSkill},
}

// Roles returns the known roles in canonical order.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := successors[r]
	return ok
}

func (r Role) String() string { return string(r) }

// ParseRole validates a role name. Matching is exact.
func ParseRole(name string) (Role, error) {
	r := Role(name)
	if !r.Valid() {
		return "", errors.InvalidArgument(fmt.Sprintf("unknown role %q", name)).
			WithContext("role", name)
	}
	return r, nil
}

// Next returns the suggested successor of r. Unknown roles map to DefaultRole.
func Next(r Role) Role {
	if next, ok := successors[r]; ok {
		return next
	}
	return DefaultRole
}

// Suggestions returns the follow-up roles offered after r.
func Suggestions(r Role) []Role {
	return append([]Role(nil), suggestions[r]...)
}

// ChainAfter returns the canonical follow-up sequence starting after r,
// covering every other role exactly once.
func ChainAfter(r Role) []Role {
	out := make([]Role, 0, len(roles)-1)
	for next := Next(r); next != r && len(out) < len(roles)-1; next = Next(next) {
		out = append(out, next)
	}
	return out
}

// RoleManifest captures descriptive metadata for a role.
type RoleManifest struct {
	Role           Role   `json:"role" yaml:"role"`
	Responsibility string `json:"responsibility" yaml:"responsibility"`
	Input          string `json:"input" yaml:"input"`
	Next           Role   `json:"next" yaml:"next"`
	Suggestions    []Role `json:"suggestions" yaml:"suggestions"`
}

var responsibilities = map[Role][2]string{
	RoleCareer:   {"Suggests career paths based on interests", "interest"},
	RoleSkill:    {"Creates skill roadmaps for specific careers", "career"},
	RoleJob:      {"Lists job roles in specific fields", "field"},
	RoleResource: {"Provides learning resources", "career path"},
}

// Manifest describes r.
func Manifest(r Role) RoleManifest {
	desc := responsibilities[r]
	return RoleManifest{
		Role:           r,
		Responsibility: desc[0],
		Input:          desc[1],
		Next:           Next(r),
		Suggestions:    Suggestions(r),
	}
}

// Manifests describes every role in canonical order.
func Manifests() []RoleManifest {
	out := make([]RoleManifest, 0, len(roles))
	for _, r := range roles {
		out = append(out, Manifest(r))
	}
	return out
}
