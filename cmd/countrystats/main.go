package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/countrystats/internal/config"
	"github.com/rewired-gh/countrystats/internal/logger"
)

var (
	cfgPath string
	cfg     *config.Config
)

// errReported marks a failure whose message already reached the user.
var errReported = errors.New("already reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "countrystats",
		Short:         "Compare World Bank indicators against forest area by country and year",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML configuration file (defaults and COUNTRY_STATS_* environment otherwise)")

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
		newCatalogCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

func setup() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
	}

	loaded, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = loaded

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	if cfgPath != "" {
		logger.Info("Configuration loaded from %s", cfgPath)
	}
	return nil
}
