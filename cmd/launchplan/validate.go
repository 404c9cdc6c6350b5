package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/launchplan/internal/cli"
	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every plan definition for consistency",
	Long: `Loads every plan of the catalog and reports malformed definitions and
inclusions of plans that do not exist. Templates are not expanded.`,
	Args: cobra.NoArgs,
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
		if err := validatePlans(a.Engine, names); err != nil {
			return fmt.Errorf("validation failed:\n%w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d plans are valid\n", len(names))
		return nil
	},
}

type describer interface {
	Describe(name string) (*domain.Plan, error)
}

func validatePlans(d describer, names []string) error {
	var errs []error
	for _, name := range names {
		def, err := d.Describe(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, a := range def.Actions() {
			if a.Kind != domain.ActionInclude || a.Include.Factory != nil {
				continue
			}
			if !slices.Contains(names, a.Include.Plan) {
				errs = append(errs, &domain.PlanInclusionError{
					Parent: name,
					Child:  a.Include.Plan,
					Err:    domain.ErrPlanNotFound,
				})
			}
		}
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
