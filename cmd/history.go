package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/qperformance/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous runs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			kind, _ := cmd.Flags().GetString("kind")
			since, _ := cmd.Flags().GetDuration("since")

			opts := store.QueryOpts{Limit: limit, Outcome: kind}
			if since > 0 {
				opts.From = time.Now().Add(-since)
			}

			return withHistory(cmd, func(repo store.RunRepo) error {
				runs, err := repo.QueryRuns(cmd.Context(), opts)
				if err != nil {
					return fmt.Errorf("query runs: %w", err)
				}
				printRunList(cmd.OutOrStdout(), runs)
				return nil
			})
		},
	}
	listCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	listCmd.Flags().StringP("kind", "k", "", "Filter by outcome kind (success, validation_failure, engine_failure, persistence_failure)")
	listCmd.Flags().Duration("since", 0, "Only show runs started within this duration, e.g. 72h")

	viewCmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Show the details of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid ID %q: %w", args[0], err)
			}

			return withHistory(cmd, func(repo store.RunRepo) error {
				run, err := repo.GetRun(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("get run: %w", err)
				}
				if run == nil {
					return fmt.Errorf("run %d not found", id)
				}
				printRun(cmd.OutOrStdout(), run)
				return nil
			})
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Count runs by outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd, func(repo store.RunRepo) error {
				counts, err := repo.OutcomeCounts(cmd.Context())
				if err != nil {
					return fmt.Errorf("count runs: %w", err)
				}
				printOutcomeCounts(cmd.OutOrStdout(), counts)
				return nil
			})
		},
	}

	historyCmd.AddCommand(listCmd)
	historyCmd.AddCommand(viewCmd)
	historyCmd.AddCommand(statsCmd)
	return historyCmd
}

// withHistory opens the history store for the duration of fn.
func withHistory(cmd *cobra.Command, fn func(store.RunRepo) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	return fn(s.RunRepo())
}

func printRunList(w io.Writer, runs []store.RunEventRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-5s  %-19s  %-20s  %-9s  %-5s  %s\n",
		"ID", "Started", "Outcome", "Types", "Warn", "Output")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, r := range runs {
		fmt.Fprintf(w, "%-5d  %-19s  %-20s  %-9s  %-5d  %s\n",
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Outcome,
			r.Types,
			len(r.Warnings),
			truncate(r.OutputPath, 40),
		)
	}
}

func printRun(w io.Writer, r *store.RunEventRecord) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintf(w, "ID:        %d\n", r.ID)
	fmt.Fprintf(w, "Run:       %s\n", r.RunID)
	fmt.Fprintf(w, "Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Duration:  %dms\n", r.DurationMs)
	fmt.Fprintf(w, "Engine:    %s\n", r.Engine)
	fmt.Fprintf(w, "Questions: %s\n", r.QuestionSource)
	fmt.Fprintf(w, "Records:   %s\n", r.RecordsFile)
	fmt.Fprintf(w, "Output:    %s\n", r.OutputPath)
	fmt.Fprintf(w, "Types:     %s\n", r.Types)
	fmt.Fprintf(w, "Outcome:   %s\n", r.Outcome)
	fmt.Fprintf(w, "Status:    %s\n", r.Status)
	if r.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:     %s\n", r.ErrorMessage)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, "WARNINGS")
	fmt.Fprintln(w, sep)
	if len(r.Warnings) == 0 {
		fmt.Fprintln(w, "(none)")
		return
	}
	for _, warn := range r.Warnings {
		fmt.Fprintln(w, warn)
	}
}

func printOutcomeCounts(w io.Writer, counts []store.OutcomeCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return
	}

	fmt.Fprintf(w, "%-20s  %6s\n", "Outcome", "Runs")
	fmt.Fprintln(w, strings.Repeat("─", 28))
	var total int
	for _, c := range counts {
		fmt.Fprintf(w, "%-20s  %6d\n", c.Outcome, c.Runs)
		total += c.Runs
	}
	fmt.Fprintln(w, strings.Repeat("─", 28))
	fmt.Fprintf(w, "%-20s  %6d\n", "TOTAL", total)
}

// truncate keeps the tail of s, which for paths is the informative part,
// in at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}
