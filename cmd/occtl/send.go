package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <session-id> <text>...",
		Short: "Send a prompt to a session",
		Long: `Send a prompt to a session. The assistant reply streams back over the
event channel; use "occtl watch" in another terminal to follow it.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			text := strings.Join(args[1:], " ")
			msg, err := a.client.SendMessage(ctx, args[0], text)
			if err != nil {
				return err
			}
			fmt.Printf("sent %s\n", msg.ID)
			return nil
		},
	}
}
