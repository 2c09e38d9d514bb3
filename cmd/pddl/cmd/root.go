package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/corey/pddl/internal/app"
	"github.com/corey/pddl/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagDir       string
	flagLogLevel  string
	flagLogFormat string
	flagColor     string
)

var rootCmd = &cobra.Command{
	Use:           "pddl",
	Short:         "pddl: PDDL workspace analyzer",
	Long:          "Parses PDDL domains, problems, plans and happenings, resolves their associations and reports problems.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		useColor = resolveColor(flagColor)
	},
}

// exitError carries a process exit code without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// ExitCode reports err to stderr unless it only carries a code, and returns
// the process exit code.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the layered config, applies flag overrides and builds
// the logger configured by it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	loader := config.NewLoader(newLogger(slog.LevelWarn, "text"))
	loader.StartDir = flagDir
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	lvl, _ := cfg.Log.SlogLevel()
	return cfg, newLogger(lvl, cfg.Log.Format), nil
}

func newLogger(level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// openApp creates the App over the configured root.
func openApp() (*app.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, log)
	if err != nil {
		if isDBLockError(err) {
			return nil, fmt.Errorf("%w\n%s", err, diagnoseDBLock(cfg.StorePath()))
		}
		return nil, err
	}
	return a, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "C", "", "Start the project config search in this directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Override log.format (text, json)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Colorize output: auto, always, never")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(associateCmd)
	rootCmd.AddCommand(configCmd)
}
