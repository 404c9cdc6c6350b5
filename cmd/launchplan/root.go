package main

import (
	"fmt"
	"os"

	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "launchplan",
	Short: "launchplan builds and launches declarative robot launch plans",
	Long: `launchplan resolves launch plans (arguments, xacro artifacts, conditional
nodes and included plans) and hands the resulting node list to a runtime.

Defaults are read from LAUNCHPLAN_* environment variables; flags override them.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaults holds the environment configuration read at startup.
var defaults = loadDefaults()

func loadDefaults() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		cfg, _ = config.LoadFrom(map[string]string{})
	}
	return cfg
}

func init() {
	cfg := defaults

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("share-dir", cfg.ShareDir, "Directory holding installed ROS packages (<share>/<package>)")
	flags.String("catalog", cfg.CatalogDir, "Directory of plan documents")
	flags.String("xacro", cfg.XacroPath, "Path of the xacro executable")
	flags.String("redis", cfg.RedisAddr, "Redis address for the artifact cache")
	flags.Bool("debug", false, "Enable debug logging to stderr")
	flags.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	flags.String("log-format", cfg.LogFormat, "Log format: text or json")
}

// optionsFrom merges the environment configuration with the command flags.
func optionsFrom(cmd *cobra.Command) cli.Options {
	opts := cli.FromConfig(defaults)
	flags := cmd.Flags()
	opts.ShareDir, _ = flags.GetString("share-dir")
	opts.CatalogDir, _ = flags.GetString("catalog")
	opts.XacroPath, _ = flags.GetString("xacro")
	opts.RedisAddr, _ = flags.GetString("redis")
	opts.Debug, _ = flags.GetBool("debug")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.LogFormat, _ = flags.GetString("log-format")
	return opts
}

// overridesFrom collects --arg flags and trailing name:=value arguments.
func overridesFrom(cmd *cobra.Command, positional []string) (string, map[string]string, error) {
	rest, pairs := cli.SplitOverrides(positional)
	if len(rest) != 1 {
		return "", nil, fmt.Errorf("expected exactly one plan name, got %d", len(rest))
	}
	flagPairs, _ := cmd.Flags().GetStringArray("arg")
	overrides, err := cli.ParseOverrides(append(flagPairs, pairs...))
	if err != nil {
		return "", nil, err
	}
	return rest[0], overrides, nil
}

func addArgFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("arg", "a", nil, "Argument override as name:=value (repeatable)")
}
