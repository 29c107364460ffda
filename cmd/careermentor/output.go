// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jllopis/careermentor/pkg/core"
	"github.com/jllopis/careermentor/pkg/handoff"
	"github.com/jllopis/careermentor/pkg/memory"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

var roleIcons = map[core.Role]string{
	core.RoleCareer:   "🌟",
	core.RoleSkill:    "🛠",
	core.RoleJob:      "💼",
	core.RoleResource: "📚",
}

func icon(r core.Role) string {
	if i, ok := roleIcons[r]; ok {
		return i
	}
	return "🤖"
}

func roleHeader(r core.Role) string {
	return fmt.Sprintf("%s %s", icon(r), boldCyan(string(r)))
}

func printResult(w io.Writer, res handoff.Result) {
	fmt.Fprintf(w, "%s handled your request:\n", roleHeader(res.PrimaryRole))
	if res.Classification.Coerced {
		fmt.Fprintln(w, yellow(fmt.Sprintf("(classifier answered %q, defaulted to %s)", res.Classification.Raw, res.PrimaryRole)))
	}
	fmt.Fprintln(w, res.PrimaryResponse)

	if len(res.Chain) == 0 {
		fmt.Fprintf(w, "\n%s %s\n", faint("Suggested next:"), res.SuggestedNext)
		return
	}
	fmt.Fprintf(w, "\n%s %s\n", boldGreen("Handoff chain for"), res.Career)
	for _, entry := range res.Chain {
		fmt.Fprintf(w, "\n%s\n%s\n", roleHeader(entry.Role), entry.Response)
	}
}

func printManual(w io.Writer, res manualOutput) {
	fmt.Fprintf(w, "%s response:\n%s\n", roleHeader(res.Role), res.Response)
	if len(res.Suggestions) == 0 {
		return
	}
	names := make([]string, 0, len(res.Suggestions))
	for _, r := range res.Suggestions {
		names = append(names, icon(r)+" "+string(r))
	}
	fmt.Fprintf(w, "\n%s %s\n", faint("Suggested next:"), strings.Join(names, ", "))
}

func printClassic(w io.Writer, res handoff.ClassicResult) {
	fmt.Fprintf(w, "%s %s\n", boldGreen("🌟 Suggested career path:"), res.Career)
	fmt.Fprintf(w, "\n%s\n%s\n", boldCyan("🛠 Skill roadmap"), res.Skills)
	fmt.Fprintf(w, "\n%s\n%s\n", boldCyan("💼 Job roles"), res.Jobs)
	fmt.Fprintf(w, "\n%s\n%s\n", boldCyan("📚 Learning resources"), res.Resources)
}

func printRoles(w io.Writer, manifests []core.RoleManifest) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tINPUT\tNEXT\tRESPONSIBILITY")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s %s\t%s\t%s\t%s\n", icon(m.Role), m.Role, m.Input, m.Next, m.Responsibility)
	}
	tw.Flush()
}

// printHistory lists interactions with the input cut to 50 characters.
func printHistory(w io.Writer, items []memory.Interaction) {
	if len(items) == 0 {
		fmt.Fprintln(w, faint("No conversation history yet."))
		return
	}
	for i, it := range items {
		fmt.Fprintf(w, "%d. %s %s: %s\n", i+1, icon(it.Role), it.Role, preview(it.UserInput, 50))
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
