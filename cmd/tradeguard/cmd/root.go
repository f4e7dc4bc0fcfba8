package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tradeguard/config"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tradeguard",
	Short: "A regime-aware trade decision and supervision engine",
	Long: `Tradeguard scores trade proposals against the current market regime
and supervises the resulting positions.

It provides tools for:
  - Classifying market regimes from candle history
  - Scoring signals with the weighted four-pillar confidence model
  - Enforcing mode- and regime-dependent approval thresholds
  - Supervising open trades: breakeven lock, time exits, trailing stops
  - Journaling every decision and exit for later review`,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "f", "", "path to config file (YAML or JSON)")
}

func setup(cmd *cobra.Command, args []string) error {
	// Local overrides (API keys, paths) come from .env when present.
	_ = godotenv.Load()

	var err error
	if cfgPath == "" {
		cfgPath = os.Getenv("TRADEGUARD_CONFIG")
	}
	if cfgPath != "" {
		cfg, err = config.LoadFromFile(cfgPath)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}
