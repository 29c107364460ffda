// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp exposes the career roles as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/handoff"
	"github.com/jllopis/careermentor/pkg/memory"
)

// Tool names.
const (
	ToolCareerPaths       = "career_paths"
	ToolSkillRoadmap      = "skill_roadmap"
	ToolJobRoles          = "job_roles"
	ToolLearningResources = "learning_resources"
	ToolHandoff           = "handoff"
)

var roleTools = []struct {
	name        string
	role        core.Role
	description string
}{
	{ToolCareerPaths, core.RoleCareer, "Suggest 2-3 career paths for an interest, one per line."},
	{ToolSkillRoadmap, core.RoleSkill, "Create a step-by-step skill roadmap for a career."},
	{ToolJobRoles, core.RoleJob, "List real-world job roles in a field."},
	{ToolLearningResources, core.RoleResource, "List free learning resources for a career path."},
}

// Server wraps the mcp-go server. One Server owns one session, matching the
// single client of a stdio transport.
type Server struct {
	mcpServer *server.MCPServer
	session   *handoff.Session
	logger    *slog.Logger
}

// NewServer creates an MCP server backed by d.
func NewServer(name, version string, d *handoff.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcpServer: server.NewMCPServer(name, version, server.WithToolCapabilities(false)),
		session:   d.NewSession(),
		logger:    logger,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// Session returns the session used by every tool call.
func (s *Server) Session() *handoff.Session { return s.session }

func (s *Server) registerTools() {
	for _, rt := range roleTools {
		role := rt.role
		tool := mcp.NewTool(rt.name,
			mcp.WithDescription(rt.description),
			mcp.WithString("input", mcp.Required(), mcp.Description("Interest, career or field")),
			mcp.WithString("career", mcp.Description("Career to use instead of input")),
		)
		s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.callRole(ctx, role, request)
		})
	}

	handoffTool := mcp.NewTool(ToolHandoff,
		mcp.WithDescription("Route a career question to the best role and chain follow-up roles for career answers."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The user's question")),
	)
	s.mcpServer.AddTool(handoffTool, s.callHandoff)
}

func (s *Server) callRole(ctx context.Context, role core.Role, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	input := stringArg(args, "input")
	if input == "" {
		return mcp.NewToolResultError("input is required"), nil
	}
	var hctx map[string]string
	if career := stringArg(args, "career"); career != "" {
		hctx = map[string]string{memory.ContextCareer: career}
	}

	out, err := s.session.Manual(ctx, input, string(role), hctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "mcp.tool.error",
			slog.String("tool", request.Params.Name),
			slog.String("error", err.Error()),
		)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) callHandoff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := stringArg(arguments(request), "input")
	if input == "" {
		return mcp.NewToolResultError("input is required"), nil
	}
	res, err := s.session.Smart(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "mcp.tool.error",
			slog.String("tool", ToolHandoff),
			slog.String("error", err.Error()),
		)
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(payload)), nil
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts a streamable HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcpServer).Start(addr)
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}
