package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tedpearson/eeg-emotion/internal/config"
)

var (
	version   = "development"
	goVersion = "unknown"
	buildDate = "unknown"
)

var (
	configFile string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "eeg-emotion",
	Short:         "Build EEG emotion datasets and predict emotional state from EEG records",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zc := zap.NewProductionConfig()
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, err = config.Load(configFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("eeg-emotion version %s built on %s with %s\n", version, buildDate, goVersion))
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "eeg-emotion.yaml", "Config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug logging")

	rootCmd.AddCommand(ingestCmd, predictCmd, signupCmd, loginCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if logger != nil {
			logger.Error("command failed", zap.Error(err))
			_ = logger.Sync()
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
