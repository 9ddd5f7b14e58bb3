package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seitarof/speccheck/internal/cli"
	"github.com/seitarof/speccheck/internal/config"
	"github.com/seitarof/speccheck/internal/confirm"
	"github.com/seitarof/speccheck/internal/generator"
	"github.com/seitarof/speccheck/internal/gotest"
	"github.com/seitarof/speccheck/internal/logger"
	"github.com/seitarof/speccheck/internal/provider/gotypes"
	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
)

// exitCode is the status of the last verdict-producing command.
var exitCode int

type action func(ctx context.Context, r cli.Runner, cfg *cli.Config) error

func verdict(run func(context.Context, *cli.Config) (result.Outcome, error)) func(context.Context, *cli.Config) error {
	return func(ctx context.Context, cfg *cli.Config) error {
		outcome, err := run(ctx, cfg)
		if err != nil {
			return err
		}
		exitCode = outcome.ExitCode()
		return nil
	}
}

// newCommand builds a command whose flags are parsed into a cli.Config and
// whose settings are layered through viper before act runs.
func newCommand(name, short, long string, act action) *cobra.Command {
	cfg := &cli.Config{}
	var types string
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
	}
	cli.RegisterGlobalFlags(cmd.Flags(), cfg)
	cli.RegisterFlags(name, cmd.Flags(), cfg, &types)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v := config.New()
		if err := config.BindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		settings, err := config.Load(v, cfg.Dir)
		if err != nil {
			return err
		}
		cfg.Settings = *settings
		if err := cli.Validate(name, cfg, types); err != nil {
			return err
		}

		log := logger.New(logger.Options{Level: settings.LogLevel})
		slog.SetDefault(log)
		return act(cmd.Context(), newRunner(cmd, cfg, log), cfg)
	}
	return cmd
}

func newRunner(cmd *cobra.Command, cfg *cli.Config, log *slog.Logger) cli.Runner {
	capabilities := cfg.Settings.CapabilityPackages
	factory := func(c *cli.Config) cli.Source {
		opts := []gotypes.Option{gotypes.WithDir(c.Dir), gotypes.WithLogger(log)}
		if len(capabilities) > 0 {
			opts = append(opts, gotypes.WithCapabilityPackages(capabilities...))
		}
		return gotypes.New(opts...)
	}
	return cli.NewRunner(
		factory,
		rule.NewDefault(),
		generator.New(generator.NewGoimportsFormatter(), generator.NewFileWriter()),
		gotest.New(gotest.WithDir(cfg.Dir), gotest.WithLogger(log)),
		cli.WithConfirmer(confirm.Auto(os.Stdin, os.Stdout)),
		cli.WithOutput(cmd.OutOrStdout()),
		cli.WithLogger(log),
	)
}

func snapshotCmd() *cobra.Command {
	return newCommand(cli.CommandSnapshot,
		"Capture the specified types of a reference package",
		`Describe the tagged types of the reference package and write them as a
YAML snapshot. Types are tagged with //speccheck: directives or through an
--overlay file.`,
		func(ctx context.Context, r cli.Runner, cfg *cli.Config) error {
			return r.Snapshot(ctx, cfg)
		})
}

func verifyCmd() *cobra.Command {
	return newCommand(cli.CommandVerify,
		"Check a candidate package against a reference",
		`Check the candidate package tier by tier and print the report. The exit
status is 0 on success, 10 when a late submission may still be packaged
and 20 otherwise.`,
		func(ctx context.Context, r cli.Runner, cfg *cli.Config) error {
			return verdict(r.Verify)(ctx, cfg)
		})
}

func generateCmd() *cobra.Command {
	return newCommand(cli.CommandGenerate,
		"Render a snapshot as a go test suite",
		`Write a _test.go file that checks the package it is placed in against the
snapshot. Tests from --functional are run after the structural checks.`,
		func(ctx context.Context, r cli.Runner, cfg *cli.Config) error {
			return r.Generate(ctx, cfg)
		})
}

func runCmd() *cobra.Command {
	return newCommand(cli.CommandRun,
		"Run a generated suite and report its results",
		"",
		func(ctx context.Context, r cli.Runner, cfg *cli.Config) error {
			return verdict(r.RunSuite)(ctx, cfg)
		})
}

func historyCmd() *cobra.Command {
	return newCommand(cli.CommandHistory,
		"List recorded runs",
		"",
		func(ctx context.Context, r cli.Runner, cfg *cli.Config) error {
			return r.History(ctx, cfg)
		})
}
