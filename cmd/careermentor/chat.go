// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/handoff"
)

const chatHelp = `Commands:
  /smart           automatic handoff with chaining (default)
  /ask             single classified answer
  /classic         careers, then skills, jobs and resources in parallel
  /agent <Role>    talk to one role directly
  /history         show the last 3 interactions
  /clear           clear the history
  /help            show this help
  exit             quit`

func newChatCmd(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive session that keeps its history between questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := current()
			c := &chat{
				rt:      rt,
				session: rt.dispatcher.NewSession(),
				mode:    handoff.ModeSmart,
				out:     cmd.OutOrStdout(),
			}
			return c.run(cmd, cmd.InOrStdin())
		},
	}
}

type chat struct {
	rt      *app
	session *handoff.Session
	mode    string
	target  core.Role
	out     io.Writer
}

func (c *chat) run(cmd *cobra.Command, in io.Reader) error {
	fmt.Fprintln(c.out, boldGreen("💼 Career Mentor"))
	fmt.Fprintln(c.out, "Tell me your passion, interest or career question. Type /help for commands, 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "\n"+boldGreen("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
			return nil
		case strings.HasPrefix(line, "/"):
			c.command(line)
			continue
		}

		if err := c.answer(cmd, line); err != nil {
			c.rt.logger.Debug("chat.turn.error", "error", err)
			fmt.Fprintln(c.out, yellow("Error: "+err.Error()))
		}
		if cmd.Context().Err() != nil {
			return nil
		}
	}
}

func (c *chat) command(line string) {
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	switch strings.ToLower(name) {
	case "smart":
		c.mode = handoff.ModeSmart
	case "ask":
		c.mode = handoff.ModeSingle
	case "classic":
		c.mode = handoff.ModeClassic
	case "agent":
		role, err := core.ParseRole(strings.TrimSpace(arg))
		if err != nil {
			fmt.Fprintln(c.out, yellow(err.Error()))
			return
		}
		c.mode, c.target = handoff.ModeManual, role
	case "history":
		printHistory(c.out, c.session.Recent(3))
		return
	case "clear":
		c.session.Clear()
		fmt.Fprintln(c.out, faint("History cleared!"))
		return
	case "help":
		fmt.Fprintln(c.out, chatHelp)
		return
	default:
		fmt.Fprintln(c.out, yellow("unknown command /"+name))
		return
	}
	fmt.Fprintln(c.out, faint("mode: "+c.modeLabel()))
}

func (c *chat) modeLabel() string {
	if c.mode == handoff.ModeManual {
		return c.mode + " (" + string(c.target) + ")"
	}
	return c.mode
}

func (c *chat) answer(cmd *cobra.Command, input string) error {
	ctx := cmd.Context()
	fmt.Fprintln(c.out)
	switch c.mode {
	case handoff.ModeSingle:
		res, err := c.session.Process(ctx, input)
		if err != nil {
			return err
		}
		printResult(c.out, res)
	case handoff.ModeClassic:
		res, err := c.session.Classic(ctx, input)
		if err != nil {
			return err
		}
		printClassic(c.out, res)
	case handoff.ModeManual:
		out, err := c.session.Manual(ctx, input, string(c.target), nil)
		if err != nil {
			return err
		}
		printManual(c.out, manualOutput{Role: c.target, Response: out, Suggestions: core.Suggestions(c.target)})
	default:
		res, err := c.session.Smart(ctx, input)
		if err != nil {
			return err
		}
		printResult(c.out, res)
	}
	return nil
}
