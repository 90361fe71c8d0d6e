package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/CodingBot000/miracle3day-sub001/internal/config"
	"github.com/CodingBot000/miracle3day-sub001/internal/log"
)

// Version is the application version.
const Version = "0.1.0"

var (
	// cfg is the loaded configuration shared by subcommands
	cfg *config.Config

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "capture",
	Short:         "Frame quality analysis and capture guidance",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			loaded.Log.Level = logLevel
		}
		if err := log.Init(loaded.Log); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT or
// SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults and CAPTURE_* environment otherwise)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}
