package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "polaris",
	Short: "Polaris - AI suggestion service for customer support",
	Long: `Polaris is an AI suggestion backend for customer-support chat.

It serves reply suggestions for live support conversations, providing:
  - A single suggestion API over interchangeable AI providers
  - Multi-provider support (Flowise, OpenRouter, Azure OpenAI)
  - Retrieval-augmented prompts from knowledge-base search
  - Runtime provider switching persisted across restarts
  - Privacy-preserving audit records for served suggestions

For more information, visit: https://github.com/caseflow-hq/polaris`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
