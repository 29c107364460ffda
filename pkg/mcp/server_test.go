// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/handoff"
	mentortest "github.com/jllopis/careermentor/pkg/testing"
)

func newTestServer(t *testing.T, stub *mentortest.StubGenerator) *Server {
	t.Helper()
	d, err := handoff.New(stub)
	require.NoError(t, err)
	return NewServer("careermentor-test", "0.0.1", d, nil)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestRoleToolsInvokeTargetRole(t *testing.T) {
	stub := mentortest.NewStubGenerator().
		On(mentortest.InstructionContains("career expert"), "Chef").
		On(mentortest.InstructionContains("Create a detailed skill roadmap"), "1. Knife skills").
		On(mentortest.InstructionContains("job market guide"), "- Sous Chef").
		On(mentortest.InstructionContains("education advisor"), "- YouTube")
	s := newTestServer(t, stub)

	want := map[core.Role]string{
		core.RoleCareer:   "Chef",
		core.RoleSkill:    "1. Knife skills",
		core.RoleJob:      "- Sous Chef",
		core.RoleResource: "- YouTube",
	}
	for _, rt := range roleTools {
		t.Run(rt.name, func(t *testing.T) {
			res, err := s.callRole(context.Background(), rt.role, callRequest(rt.name, map[string]interface{}{"input": "cooking"}))
			require.NoError(t, err)
			assert.False(t, res.IsError)
			assert.Equal(t, want[rt.role], resultText(t, res))
		})
	}
	assert.Zero(t, stub.CountMatching(mentortest.InstructionContains("conversation coordinator")))
}

func TestRoleToolUsesCareerArgument(t *testing.T) {
	stub := mentortest.NewStubGenerator().WithDefault("ok")
	s := newTestServer(t, stub)

	_, err := s.callRole(context.Background(), core.RoleJob, callRequest(ToolJobRoles, map[string]interface{}{
		"input":  "something",
		"career": "Baker",
	}))
	require.NoError(t, err)
	assert.Equal(t, "List job roles in Baker.", stub.Calls()[0].Prompt)
}

func TestRoleToolRequiresInput(t *testing.T) {
	stub := mentortest.NewStubGenerator().WithDefault("ok")
	s := newTestServer(t, stub)

	res, err := s.callRole(context.Background(), core.RoleSkill, callRequest(ToolSkillRoadmap, map[string]interface{}{"input": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Zero(t, stub.CallCount())
}

func TestRoleToolReportsGenerationFailure(t *testing.T) {
	stub := mentortest.NewStubGenerator().FailOn(func(mentortest.Call) bool { return true }, stderrors.New("quota"))
	s := newTestServer(t, stub)

	res, err := s.callRole(context.Background(), core.RoleCareer, callRequest(ToolCareerPaths, map[string]interface{}{"input": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandoffToolReturnsChain(t *testing.T) {
	stub := mentortest.NewStubGenerator().
		On(mentortest.InstructionContains("conversation coordinator"), "CareerAgent").
		On(mentortest.InstructionContains("career expert"), "Graphic Designer\nUX Designer").
		WithDefault("details")
	s := newTestServer(t, stub)

	res, err := s.callHandoff(context.Background(), callRequest(ToolHandoff, map[string]interface{}{"input": "I love painting"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out handoff.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, core.RoleCareer, out.PrimaryRole)
	assert.Equal(t, "Graphic Designer", out.Career)
	assert.Len(t, out.Chain, 3)
	assert.Len(t, s.Session().History(), 4)
}

func TestToolsAreListed(t *testing.T) {
	s := newTestServer(t, mentortest.NewStubGenerator())

	resp := s.MCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	for _, name := range []string{ToolCareerPaths, ToolSkillRoadmap, ToolJobRoles, ToolLearningResources, ToolHandoff} {
		assert.Contains(t, string(raw), `"`+name+`"`)
	}
}
