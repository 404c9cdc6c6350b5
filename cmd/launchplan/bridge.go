package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/launchplan/pkg/bridge"
	"github.com/spf13/cobra"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Show or validate a ros_gz bridge configuration",
	Long: `Without --file, prints the default Kobuki bridge configuration.
With --file, validates the given configuration and lists its topics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			data, err := bridge.KobukiDefault().Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		cfg, err := bridge.Load(path)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid bridge config %s:\n%w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d topics\n  %s\n", path, len(cfg), strings.Join(cfg.Topics(), "\n  "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().String("file", "", "Bridge configuration file to validate")
}
