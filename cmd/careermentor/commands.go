// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/errors"
	"github.com/jllopis/careermentor/pkg/memory"
	"github.com/jllopis/careermentor/pkg/mcp"
	"github.com/jllopis/careermentor/pkg/server"
)

func joinInput(args []string) (string, error) {
	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		return "", errors.InvalidArgument("input is required")
	}
	return input, nil
}

func newAskCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Classify a question and answer it with a single role",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := joinInput(args)
			if err != nil {
				return err
			}
			rt := current()
			res, err := rt.dispatcher.NewSession().Process(cmd.Context(), input)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), res, func(w io.Writer) { printResult(w, res) })
		},
	}
}

func newSmartCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "smart <question>",
		Short: "Answer a question and chain the follow-up roles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := joinInput(args)
			if err != nil {
				return err
			}
			rt := current()
			res, err := rt.dispatcher.NewSession().Smart(cmd.Context(), input)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), res, func(w io.Writer) { printResult(w, res) })
		},
	}
}

type manualOutput struct {
	Role        core.Role   `json:"role"`
	Response    string      `json:"response"`
	Suggestions []core.Role `json:"suggestions"`
}

func newManualCmd(current func() *app) *cobra.Command {
	var role, career string
	cmd := &cobra.Command{
		Use:   "manual --role <Role> <input>",
		Short: "Ask one role directly, skipping classification",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := joinInput(args)
			if err != nil {
				return err
			}
			var hctx map[string]string
			if career != "" {
				hctx = map[string]string{memory.ContextCareer: career}
			}
			rt := current()
			out, err := rt.dispatcher.NewSession().Manual(cmd.Context(), input, role, hctx)
			if err != nil {
				return err
			}
			res := manualOutput{
				Role:        core.Role(role),
				Response:    out,
				Suggestions: core.Suggestions(core.Role(role)),
			}
			return rt.render(cmd.OutOrStdout(), res, func(w io.Writer) { printManual(w, res) })
		},
	}
	cmd.Flags().StringVar(&role, "role", string(core.RoleCareer), "target role (CareerAgent, SkillAgent, JobAgent, ResourceAgent)")
	cmd.Flags().StringVar(&career, "career", "", "career to use instead of the input")
	return cmd
}

func newClassicCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classic <interest>",
		Short: "Suggest careers, then fetch skills, jobs and resources in parallel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := joinInput(args)
			if err != nil {
				return err
			}
			rt := current()
			res, err := rt.dispatcher.NewSession().Classic(cmd.Context(), input)
			if err != nil {
				return err
			}
			return rt.render(cmd.OutOrStdout(), res, func(w io.Writer) { printClassic(w, res) })
		},
	}
}

func newRolesCmd(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List the roles and their handoff successors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifests := core.Manifests()
			if global.JSON {
				return writeJSON(cmd.OutOrStdout(), manifests)
			}
			printRoles(cmd.OutOrStdout(), manifests)
			return nil
		},
	}
}

func newServeCmd(current func() *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}
			return server.New(rt.dispatcher, rt.logger).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to server.addr)")
	return cmd
}

func newMCPCmd(current func() *app) *cobra.Command {
	var httpAddr string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Expose the roles as MCP tools over stdio or streamable HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			s := mcp.NewServer(serviceName, version, rt.dispatcher, rt.logger)
			if httpAddr != "" {
				return serveUntilDone(cmd.Context(), func() error { return s.ServeHTTP(httpAddr) })
			}
			return s.ServeStdio()
		},
	}
	cmd.Flags().StringVar(&httpAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	return cmd
}

// serveUntilDone runs serve and returns when it fails or ctx is cancelled.
func serveUntilDone(ctx context.Context, serve func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- serve() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

// render writes v as JSON when --json is set, otherwise calls text.
func (a *app) render(w io.Writer, v any, text func(io.Writer)) error {
	if a.json {
		return writeJSON(w, v)
	}
	text(w)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
