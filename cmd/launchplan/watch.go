package main

import (
	"github.com/aretw0/launchplan/internal/cli"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <name> [name:=value]...",
	Short: "Rebuild a plan whenever a plan document changes",
	Long:  `Development mode: resolves the plan from the --catalog directory and rebuilds it on every change.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, overrides, err := overridesFrom(cmd, args)
		if err != nil {
			return err
		}
		opts := optionsFrom(cmd)
		opts.DryRun = true
		logger := cli.CreateLogger(opts)
		a, err := cli.CreateEngine(cmd.Context(), opts, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		return cli.RunWatch(sigCtx, a.Engine, name, overrides, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addArgFlag(watchCmd)
}
