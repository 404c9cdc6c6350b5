package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchplan"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of launchplan",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "launchplan version %s\n", strings.TrimSpace(launchplan.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
