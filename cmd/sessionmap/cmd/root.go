package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/sessionmap/config"
	"github.com/rustyeddy/sessionmap/logger"
	"github.com/rustyeddy/sessionmap/trace"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sessionmap",
	Short: "Session level analytics and risk sizing for index futures",
	Long: `SessionMap turns analyzed intraday charts into session level statistics.

It provides tools for:
  - Aggregating Asia, London and New York high/low reactions
  - Backtesting the level reactions as a fixed-stop trade rule
  - Ranking trading strategies against the recorded history
  - Sizing forecast setups with a hybrid stop and a fixed risk budget
  - Exporting CSV and Org-mode reports

Setups are advisory. SessionMap never places orders.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return trace.Shutdown(context.Background())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (overrides config)")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg = config.Default()
	if cfgFile != "" {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger.Init("sessionmap", cfg.Log.Level, cfg.Log.Pretty)
	if err := trace.Init(cfg.Trace.Enabled, os.Stderr, version); err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	logger.Debug().Str("config", cfgFile).Str("instrument", cfg.Instrument.Symbol).Msg("configured")
	return nil
}
