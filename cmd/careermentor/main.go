// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Command careermentor routes career questions to the specialised roles from
// the terminal, over HTTP or as an MCP server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jllopis/careermentor/pkg/agent"
	"github.com/jllopis/careermentor/pkg/config"
	"github.com/jllopis/careermentor/pkg/handoff"
	"github.com/jllopis/careermentor/pkg/llm"
	"github.com/jllopis/careermentor/pkg/providers"
	"github.com/jllopis/careermentor/pkg/telemetry"
)

const (
	serviceName = "careermentor"
	version     = "0.1.0"
)

// generatorFactory builds the text generator from configuration. Tests swap
// it for a scripted stub.
type generatorFactory func(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (llm.Generator, error)

type globalFlags struct {
	ConfigPath string
	Profile    string
	Sets       []string
	JSON       bool
}

// app is the wired runtime shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	dispatcher *handoff.Dispatcher
	shutdown   telemetry.ShutdownFunc
	json       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(providers.NewGenerator, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(newGenerator generatorFactory, logOutput io.Writer) *cobra.Command {
	global := &globalFlags{}
	var rt *app

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Career guidance through specialised agent handoffs",
		Long: `careermentor routes a question to one of four roles:

  CareerAgent    suggests career paths for an interest
  SkillAgent     builds a skill roadmap for a career
  JobAgent       lists job roles in a field
  ResourceAgent  gives free learning resources

A career answer is chained into the other three roles automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "roles" || cmd.Name() == "help" {
				return nil
			}
			var err error
			rt, err = bootstrap(cmd.Context(), global, newGenerator, logOutput)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt == nil || rt.shutdown == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rt.shutdown(ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&global.ConfigPath, "config", "", "path to a YAML config file")
	flags.StringVar(&global.Profile, "profile", "", "profile overlay (config.<profile>.yaml next to --config)")
	flags.StringArrayVar(&global.Sets, "set", nil, "override a config key (key=value), repeatable")
	flags.BoolVar(&global.JSON, "json", false, "print results as JSON")

	current := func() *app { return rt }
	root.AddCommand(
		newAskCmd(current),
		newSmartCmd(current),
		newManualCmd(current),
		newClassicCmd(current),
		newChatCmd(current),
		newServeCmd(current),
		newMCPCmd(current),
		newRolesCmd(global),
	)
	return root
}

// cliArgs turns the global flags into the argument form understood by
// config.LoadWithCLI.
func (g *globalFlags) cliArgs() []string {
	var args []string
	if g.ConfigPath != "" {
		args = append(args, "--config", g.ConfigPath)
	}
	if g.Profile != "" {
		args = append(args, "--profile", g.Profile)
	}
	for _, s := range g.Sets {
		args = append(args, "--set", s)
	}
	return args
}

func bootstrap(ctx context.Context, global *globalFlags, newGenerator generatorFactory, logOutput io.Writer) (*app, error) {
	cfg, err := config.LoadWithCLI(global.cliArgs())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := telemetry.ConfigureSlog(logOutput, cfg.Log.Level, cfg.Log.Format)

	tc := telemetry.FromSettings(cfg, serviceName, version, global.Profile)
	// Keep stdout free for command output.
	tc.Writer = logOutput
	shutdown, err := telemetry.Setup(ctx, tc)
	if err != nil {
		return nil, err
	}
	metrics, err := telemetry.NewHandoffMetrics(ctx)
	if err != nil {
		return nil, err
	}

	catalog, err := agent.LoadCatalog(cfg.Handoff.RolesFile)
	if err != nil {
		return nil, err
	}
	mode, err := handoff.ParseChainMode(cfg.Handoff.ChainMode)
	if err != nil {
		return nil, err
	}

	generator, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	d, err := handoff.New(generator,
		handoff.WithCatalog(catalog),
		handoff.WithChainMode(mode),
		handoff.WithRecordDirect(cfg.Handoff.RecordDirect),
		handoff.WithLogger(logger),
		handoff.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	logger.Debug("careermentor.ready",
		slog.String("provider", cfg.LLM.Provider),
		slog.String("model", cfg.LLM.Model),
		slog.String("chain_mode", string(mode)),
	)
	return &app{
		cfg:        cfg,
		logger:     logger,
		dispatcher: d,
		shutdown:   shutdown,
		json:       global.JSON,
	}, nil
}
