package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/abhisek/qperformance/internal/config"
	"github.com/abhisek/qperformance/internal/store"
	"github.com/spf13/cobra"
)

// errRunFailed signals a run that ended without a saved report. Its status
// has already been printed.
var errRunFailed = errors.New("run failed")

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qperformance",
		Short: "Quiz performance reports from QuizMachine records",
		Long: "qperformance checks a question set and a QuizMachine records file, runs the\n" +
			"analysis engine over them and saves the per-type performance report.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadDotEnv()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides QPERF_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to run history database (overrides QPERF_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTypesCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

// Execute runs the command line and reports any error on stderr. Canceling
// ctx stops a running analysis engine.
func Execute(ctx context.Context) error {
	err := newRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errRunFailed) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// loadConfig reads configuration, applying the --log-level flag on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := config.ParseLevel(lvl); err != nil {
			return config.Config{}, err
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// newLogger builds the stderr logger for cfg.
func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
