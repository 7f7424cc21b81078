package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var output string
	var noDedupe bool

	cmd := &cobra.Command{
		Use:   "clean <input.csv>",
		Short: "Repair text, normalize lists and standardize dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, target, err := resolvePaths(args[0], output, "cleaned")
			if err != nil {
				return err
			}
			p, err := ctx.newPipeline(cmd, input, target)
			if err != nil {
				return err
			}
			defer p.close()
			if noDedupe {
				p.cfg.Cleaning.Dedupe = false
			}

			ds, err := p.load()
			if err != nil {
				return err
			}
			if _, err := p.clean(cmd.Context(), ds); err != nil {
				return err
			}
			if err := p.save(ds); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Wrote %d rows to %s (run %s)\n", ds.Len(), target, p.runID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination CSV (default: <input>_cleaned.csv)")
	cmd.Flags().BoolVar(&noDedupe, "no-dedupe", false, "Keep rows with duplicate ids")
	return cmd
}
