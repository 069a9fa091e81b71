package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMeetingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "meeting",
		Aliases: []string{"mtg"},
		Short:   "Meeting management (join, leave, list, inspect)",
	}
	cmd.AddCommand(newMeetingJoinCmd())
	cmd.AddCommand(newMeetingLeaveCmd())
	cmd.AddCommand(newMeetingListCmd())
	cmd.AddCommand(newMeetingGetCmd())
	return cmd
}

func newMeetingJoinCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "join",
		Short: "Send a bot into a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)

			body := map[string]interface{}{
				"meetingUrl": mustGetString(cmd, "url"),
			}
			if v, _ := cmd.Flags().GetString("bot-name"); v != "" {
				body["botName"] = v
			}

			resp, err := client.Request("POST", "/api/v1/meetings", body)
			if err != nil {
				return err
			}
			return printOutput(cfg.Output, resp)
		},
	}
	c.Flags().String("url", "", "meeting URL the bot should join (required)")
	c.Flags().String("bot-name", "", "display name for the bot (optional)")
	_ = c.MarkFlagRequired("url")
	return c
}

func newMeetingLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <meeting-id>",
		Short: "Make the bot leave a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)
			resp, err := client.Request("POST", fmt.Sprintf("/api/v1/meetings/%s/leave", args[0]), nil)
			if err != nil {
				return err
			}
			return printOutput(cfg.Output, resp)
		},
	}
}

func newMeetingListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)
			resp, err := client.Get("/api/v1/meetings")
			if err != nil {
				return err
			}
			return printOutput(cfg.Output, resp)
		},
	}
}

func newMeetingGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <meeting-id>",
		Short: "Show one meeting record with transcript and summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)
			resp, err := client.Get(fmt.Sprintf("/api/v1/meetings/%s", args[0]))
			if err != nil {
				return err
			}
			return printOutput(cfg.Output, resp)
		},
		Args: cobra.ExactArgs(1),
	}
}
