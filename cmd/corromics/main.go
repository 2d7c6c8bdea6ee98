package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"corromics/internal/config"
	"corromics/internal/logging"
)

// app carries what every subcommand needs after flags are parsed.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "corromics",
		Short: "Metabolome x genome correlation with target-decoy FDR",
		Long: `corromics correlates every metabolite with every genomic feature measured on
the same samples and estimates an empirical false discovery rate from a
decoy genome built by permuting each feature across samples.

Settings come from defaults, an optional TOML file (--config), the
environment (a .env file is loaded first) and finally command flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newAnalyzeCmd(a),
		newServeCmd(a),
		newEstimateCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}
