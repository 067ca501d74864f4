package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/abhisek/qperformance/internal/config"
	"github.com/abhisek/qperformance/internal/engine"
	"github.com/abhisek/qperformance/internal/pipeline"
	"github.com/abhisek/qperformance/internal/qtype"
	"github.com/abhisek/qperformance/internal/store"
	"github.com/abhisek/qperformance/internal/ui/status"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze QuizMachine records and save a performance report",
		Long: "Run checks that the question set and records file exist and that the output\n" +
			"file does not, then runs the analysis engine and saves its report.\n\n" +
			"Question types: A G I Q R S X V, plus M for memory verse totals (Q, R, V).",
		Example: "  qperformance run -q sets/ -r records.csv -o report.csv\n" +
			"  qperformance run -q set1.rtf -r records.csv -o qrv.csv --types QRVM",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd)
		},
	}

	runCmd.Flags().StringP("questions", "q", "", "Question set: a single file or a folder of files")
	runCmd.Flags().StringP("records", "r", "", "QuizMachine records file (.csv)")
	runCmd.Flags().StringP("output", "o", "", "Output file; must not already exist")
	runCmd.Flags().StringP("types", "t", "", "Question types to include, e.g. AGIQRSXVM (default from config)")
	runCmd.Flags().Bool("no-history", false, "Do not record this run in the history database")
	runCmd.Flags().Bool("no-color", false, "Print the status without styling")
	return runCmd
}

// runReport wires the engine, history and pipeline, runs one request and
// prints its status.
func runReport(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cmd, cfg)

	toggles := cfg.DefaultToggles()
	if cmd.Flags().Changed("types") {
		raw, _ := cmd.Flags().GetString("types")
		if toggles, err = qtype.ParseToggles(raw); err != nil {
			return fmt.Errorf("--types: %w", err)
		}
	}

	eng, err := engine.NewExecEngine(engine.ExecConfig{
		Command: cfg.Engine.Command,
		Env:     cfg.Engine.Env,
		Timeout: cfg.Engine.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}

	opts := pipeline.Options{Engine: eng, Logger: logger}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	if cfg.History && !noHistory {
		if st := openHistory(cmd, cfg, logger); st != nil {
			defer st.Close()
			opts.History = st.RunRepo()
		}
	}

	coord, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	questions, _ := cmd.Flags().GetString("questions")
	records, _ := cmd.Flags().GetString("records")
	output, _ := cmd.Flags().GetString("output")

	out := coord.Run(ctx, pipeline.Request{
		QuestionSource: questions,
		RecordsFile:    records,
		OutputPath:     output,
		Toggles:        toggles,
	})

	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		if _, err := io.WriteString(cmd.OutOrStdout(), status.Plain(out)); err != nil {
			return err
		}
	} else if err := status.Render(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if !out.OK() {
		return errRunFailed
	}
	return nil
}

// openHistory opens the run history store. History is best-effort: on
// failure the run proceeds unrecorded.
func openHistory(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) *store.Store {
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return nil
	}
	st, err := store.Open(dbPath)
	if err != nil {
		logger.Warn("run history unavailable", "path", dbPath, "error", err)
		return nil
	}
	return st
}
