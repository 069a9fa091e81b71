package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "scribe",
		Short:   "Meetscribe CLI",
		Long:    "Command line client for the Meetscribe HTTP API: dispatch bots, inspect transcripts, trigger summaries.",
		Version: version,
	}

	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newMeetingCmd())
	rootCmd.AddCommand(newSummaryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
