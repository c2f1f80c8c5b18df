package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hostline",
	Short: "hostline runs the table-booking conversation of a restaurant voice assistant",
	Long: `hostline drives the conversation state machine behind a restaurant voice
assistant: it serves the webhook and conversation API, simulates calls in the
terminal, publishes the agent graph to the voice platform and classifies
finished calls into the call log.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "dotenv files to load (default .env)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().String("templates", "", "directory of prompt template overrides (overrides TEMPLATE_DIR)")
}
