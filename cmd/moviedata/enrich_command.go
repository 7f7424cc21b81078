package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"moviedata/internal/config"
	"moviedata/internal/preflight"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var output string
	var opts enrichOptions
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "enrich <input.csv>",
		Short: "Fill missing fields from TMDB with checkpoint and resume",
		Long: "Fill missing target fields from TMDB. Progress is checkpointed under the data directory;\n" +
			"rerunning the same command after an interruption resumes from the last checkpoint.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, target, err := resolvePaths(args[0], output, "enriched")
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
			enriched, _, err := p.enrich(cmd.Context(), ds, opts)
			if err != nil {
				return err
			}
			if err := p.save(enriched); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "Wrote %d rows to %s (run %s)\n", enriched.Len(), target, p.runID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination CSV (default: <input>_enriched.csv)")
	cmd.Flags().BoolVar(&opts.restart, "restart", false, "Discard an existing checkpoint instead of resuming")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "Target columns (default: enrichment.target_columns)")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Skip the TMDB credential check")
	return cmd
}

// checkTMDB fails fast on a missing or rejected API key.
func checkTMDB(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireTMDB(); err != nil {
		return err
	}
	result := preflight.CheckTMDB(ctx, cfg)
	if !result.Passed {
		return errors.New("tmdb preflight failed: " + result.Detail)
	}
	return nil
}
