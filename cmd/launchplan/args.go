package main

import (
	"fmt"

	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var argsCmd = &cobra.Command{
	Use:   "args <name>",
	Short: "Show the arguments a plan declares",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(cmd)
		opts.DryRun = true
		a, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts))
		if err != nil {
			return err
		}
		defer a.Close()

		def, err := a.Engine.Describe(args[0])
		if err != nil {
			return err
		}
		return tui.Print(cmd.OutOrStdout(), tui.DefinitionMarkdown(def))
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the plans that can be built",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFrom(cmd)
		opts.DryRun = true
		a, err := cli.CreateEngine(cmd.Context(), opts, cli.CreateLogger(opts))
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.Engine.Plans()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(argsCmd)
	rootCmd.AddCommand(listCmd)
}
