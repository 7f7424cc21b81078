package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var output string
	var opts enrichOptions
	var noCorrect bool
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "run <input.csv>",
		Short: "Clean, enrich and validate a dataset in one pass",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, target, err := resolvePaths(args[0], output, "final")
			if err != nil {
				return err
			}
			p, err := ctx.newPipeline(cmd, input, target)
			if err != nil {
				return err
			}
			defer p.close()
			if !skipCheck {
				if err := checkTMDB(cmd.Context(), p.cfg); err != nil {
					return err
				}
			}

			ds, err := p.load()
			if err != nil {
				return err
			}
			if _, err := p.clean(cmd.Context(), ds); err != nil {
				return err
			}
			enriched, _, err := p.enrich(cmd.Context(), ds, opts)
			if err != nil {
				return err
			}
			correct := p.cfg.Validation.Correct && !noCorrect
			if _, err := p.validate(cmd.Context(), enriched, correct); err != nil {
				return err
			}
			if err := p.save(enriched); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Wrote %d rows to %s (run %s)\n", enriched.Len(), target, p.runID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination CSV (default: <input>_final.csv)")
	cmd.Flags().BoolVar(&opts.restart, "restart", false, "Discard an existing enrichment checkpoint instead of resuming")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "Target columns (default: enrichment.target_columns)")
	cmd.Flags().BoolVar(&noCorrect, "no-correct", false, "Skip TMDB corrections during validation")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Skip the TMDB credential check")
	return cmd
}
