package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"moviedata/internal/runstore"
)

type runView struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Stage       string    `json:"stage"`
	Status      string    `json:"status"`
	Input       string    `json:"input,omitempty"`
	Output      string    `json:"output,omitempty"`
	Report      string    `json:"report,omitempty"`
	Rows        int       `json:"rows"`
	MetricName  string    `json:"metric_name,omitempty"`
	MetricValue float64   `json:"metric_value"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	ElapsedMS   int64     `json:"elapsed_ms"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var rowID int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded stage runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			var runs []*runstore.Run
			switch id := strings.TrimSpace(runID); {
			case rowID > 0:
				run, getErr := store.Get(cmd.Context(), rowID)
				if getErr != nil {
					return getErr
				}
				if run == nil {
					return fmt.Errorf("run %d not found", rowID)
				}
				runs = []*runstore.Run{run}
			case id != "":
				runs, err = store.ListByRunID(cmd.Context(), id)
			default:
				runs, err = store.List(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			if asJSON {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, toRunView(run))
				}
				return writeJSON(cmd, views)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					shortRunID(run.RunID),
					string(run.Stage),
					string(run.Status),
					strconv.Itoa(run.Rows),
					formatMetric(run),
					formatElapsed(run.Elapsed()),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"ID", "Run", "Stage", "Status", "Rows", "Metric", "Elapsed", "Started"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run-id", "", "Show every stage of one run")
	cmd.Flags().Int64Var(&rowID, "id", 0, "Show a single stage record by its ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func toRunView(run *runstore.Run) runView {
	return runView{
		ID:          run.ID,
		RunID:       run.RunID,
		Stage:       string(run.Stage),
		Status:      string(run.Status),
		Input:       run.InputPath,
		Output:      run.OutputPath,
		Report:      run.ReportPath,
		Rows:        run.Rows,
		MetricName:  run.MetricName,
		MetricValue: run.MetricValue,
		Error:       run.ErrorMessage,
		StartedAt:   run.StartedAt,
		ElapsedMS:   run.Elapsed().Milliseconds(),
	}
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatMetric(run *runstore.Run) string {
	if run.MetricName == "" {
		return "-"
	}
	switch run.MetricName {
	case "success_rate", "health_score":
		return run.MetricName + " " + formatPercent(run.MetricValue)
	default:
		return run.MetricName + " " + strconv.FormatFloat(run.MetricValue, 'f', -1, 64)
	}
}
