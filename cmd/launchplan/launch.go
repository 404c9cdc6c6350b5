package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/launchplan"
	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch <name> [name:=value]...",
	Short: "Build a plan and start its nodes",
	Long: `Builds the plan and starts every node with "ros2 run", supervising them until
they exit or the command is interrupted. If the build fails nothing is started.

With --dry-run the nodes are only listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, overrides, err := overridesFrom(cmd, args)
		if err != nil {
			return err
		}
		opts := optionsFrom(cmd)
		opts.DryRun, _ = cmd.Flags().GetBool("dry-run")
		opts.Executables, _ = cmd.Flags().GetString("executables")
		quiet, _ := cmd.Flags().GetBool("quiet")

		logger := cli.CreateLogger(opts)
		a, err := cli.CreateEngine(cmd.Context(), opts, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if !quiet && !opts.DryRun && tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		lp, err := a.Engine.Launch(sigCtx, name, overrides)
		if err != nil {
			if sig := sigCtx.Signal(); sig != nil && errors.Is(err, context.Canceled) {
				logger.Info("launch interrupted", "signal", sig)
				return nil
			}
			return err
		}
		if opts.DryRun {
			for _, n := range a.Recorder.Nodes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", n.DisplayName(), n.ExecutableID())
			}
		}
		logger.Debug("plan finished", "plan", lp.Name, "version", launchplan.Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
	addArgFlag(launchCmd)
	launchCmd.Flags().Bool("dry-run", false, "List the nodes instead of starting them")
	launchCmd.Flags().String("executables", defaults.Executables, "YAML or JSON file overriding the command of selected executables")
	launchCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
