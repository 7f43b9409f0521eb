package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/picklr-io/stagehand/internal/config"
	"github.com/picklr-io/stagehand/internal/logging"
)

var (
	logLevel  string
	logFormat string
	noColor   bool

	// settings is loaded before every command runs.
	settings *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "stagehand",
	Short: "Declarative deployments for Roblox experiences",
	Long: `Stagehand deploys a Roblox experience from a declaration file.

Describe the experience, its places, icon, thumbnails and developer products
in stagehand.yml (or main.pkl). Stagehand compares the declaration with the
recorded state and creates, updates or deletes exactly what changed.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (console, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(outputCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(taintCmd)
	rootCmd.AddCommand(untaintCmd)
	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if os.Getenv("NO_COLOR") != "" {
		noColor = true
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	settings = cfg
	return nil
}
