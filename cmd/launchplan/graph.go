package main

import (
	"fmt"

	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <name> [name:=value]...",
	Short: "Export the resolved plan as a Mermaid diagram",
	Long:  `Builds the plan and outputs a Mermaid diagram (graph TD) of its artifacts, nodes and inclusions.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, overrides, err := overridesFrom(cmd, args)
		if err != nil {
			return err
		}
		opts := optionsFrom(cmd)
		opts.DryRun = true
		a, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts))
		if err != nil {
			return err
		}
		defer a.Close()

		lp, err := a.Engine.Build(cmd.Context(), name, overrides)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(lp))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addArgFlag(graphCmd)
}
