package main

import (
	"github.com/spf13/cobra"
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarization",
	}
	cmd.AddCommand(newSummaryGenerateCmd())
	return cmd
}

func newSummaryGenerateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "generate",
		Short: "Generate a summary from a meeting's stored transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)

			body := map[string]interface{}{
				"meetingId": mustGetString(cmd, "meeting-id"),
			}
			resp, err := client.Request("POST", "/api/v1/summarize", body)
			if err != nil {
				return err
			}
			return printOutput(cfg.Output, resp)
		},
	}
	c.Flags().String("meeting-id", "", "meeting ID (required)")
	_ = c.MarkFlagRequired("meeting-id")
	return c
}
