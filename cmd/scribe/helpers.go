package main

import (
	"github.com/spf13/cobra"
)

// mustGetString reads a required string flag; cobra has already
// enforced its presence via MarkFlagRequired.
func mustGetString(cmd *cobra.Command, flag string) string {
	v, _ := cmd.Flags().GetString(flag)
	return v
}
