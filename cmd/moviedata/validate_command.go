package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var output string
	var noCorrect bool
	var minHealth float64

	cmd := &cobra.Command{
		Use:   "validate <input.csv>",
		Short: "Check field values, correct invalid ones from TMDB and report a health score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, target, err := resolvePaths(args[0], output, "")
			if err != nil {
				return err
			}
			p, err := ctx.newPipeline(cmd, input, target)
			if err != nil {
				return err
			}
			defer p.close()

			ds, err := p.load()
			if err != nil {
				return err
			}
			correct := p.cfg.Validation.Correct && !noCorrect
			report, err := p.validate(cmd.Context(), ds, correct)
			if err != nil {
				return err
			}
			if target != "" {
				if err := p.save(ds); err != nil {
					return err
				}
				fmt.Fprintf(p.out, "Wrote %d rows to %s (run %s)\n", ds.Len(), target, p.runID)
			}
			if report.HealthScore < minHealth {
				return fmt.Errorf("health score %s below required %s", formatPercent(report.HealthScore), formatPercent(minHealth))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the corrected dataset to this CSV")
	cmd.Flags().BoolVar(&noCorrect, "no-correct", false, "Report only; do not query TMDB for corrections")
	cmd.Flags().Float64Var(&minHealth, "min-health", 0, "Fail when the health score is below this percentage")
	return cmd
}
