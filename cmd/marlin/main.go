package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"marlin/internal/config"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marlin",
	Short: "marlin - max-margin weight learning for Markov logic networks",
	Long: `marlin learns real-valued weights for first-order logical clauses
from annotated ground-truth databases, using cutting-plane max-margin
optimization with a MaxSAT MAP-inference oracle.

A knowledge base declares typed predicates and weighted clauses; evidence
and training databases are closed-world Mangle fact files.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}
		if cfg.Logging.Verbose && !verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			if logger, err = zcfg.Build(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marlin version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marlin %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
