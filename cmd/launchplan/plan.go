package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/presentation/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var planCmd = &cobra.Command{
	Use:   "plan <name> [name:=value]...",
	Short: "Resolve a plan and print what would be launched",
	Long: `Builds the plan with the given argument overrides, expanding artifacts with
xacro, and prints the resolved plan. Nothing is started.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, overrides, err := overridesFrom(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

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

		out := cmd.OutOrStdout()
		switch format {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(lp)
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(lp)
		case "markdown", "":
			return tui.Print(out, tui.PlanMarkdown(lp))
		default:
			return fmt.Errorf("unknown format %q (markdown, yaml, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	addArgFlag(planCmd)
	planCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, yaml or json")
}
