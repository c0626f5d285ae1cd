package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sievetools/jirasieve/internal/config"
	"github.com/sievetools/jirasieve/internal/debug"
	"github.com/sievetools/jirasieve/internal/telemetry"
)

var (
	verboseFlag bool // Enable verbose/debug output
	quietFlag   bool // Suppress non-essential output
	jsonOutput  bool
	cfgFile     string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: jirasieve.yaml in . or $HOME)")
}

var rootCmd = &cobra.Command{
	Use:   "jirasieve",
	Short: "jirasieve - JIRA backup dump to import-document converter",
	Long: `Converts a JIRA entities.xml backup dump into denormalized per-project
JSON documents plus a users document, ready for import into another tracker.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)

		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		if cfgFile != "" {
			if err := config.SetConfigFile(cfgFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if err := telemetry.Init(rootCtx, "jirasieve", Version); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry init failed: %v\n", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		telemetry.Shutdown(shutdownCtx)

		if rootCancel != nil {
			rootCancel()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
