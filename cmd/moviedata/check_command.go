package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moviedata/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, TMDB credentials and optionally an input dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			path := strings.TrimSpace(input)
			if path != "" {
				if path, _, err = resolvePaths(path, "", ""); err != nil {
					return err
				}
			}
			results := preflight.RunAll(cmd.Context(), cfg, path)

			lines := renderSectionHeader("Preflight", colorize)
			for _, result := range results {
				lines = append(lines, renderCheckLine(result, colorize))
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Dataset to check for readability and an id column")
	return cmd
}
