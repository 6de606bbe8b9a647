package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"occtl/internal/logging"
	"occtl/internal/types"
)

var (
	headerColor = color.New(color.Bold)
	dimColor    = color.New(color.Faint)
	busyColor   = color.New(color.FgYellow)
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "ses"},
		Short:   "Manage sessions on the server",
	}
	cmd.AddCommand(sessionsListCmd(), sessionsNewCmd(), sessionsRenameCmd(), sessionsRmCmd())
	return cmd
}

func sessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			sessions, err := a.client.ListSessions(ctx)
			if err != nil {
				// Degrade to the cached list so a dead server still
				// shows something, clearly marked stale.
				cached, cacheErr := a.store.CachedSessions(ctx)
				if cacheErr != nil || len(cached) == 0 {
					return err
				}
				dimColor.Fprintf(os.Stderr, "server unreachable (%v); showing cached sessions\n", err)
				printSessions(cached, nil)
				return nil
			}

			if cacheErr := a.store.CacheSessions(ctx, sessions); cacheErr != nil {
				a.log.Warn("failed to cache sessions", logging.F("err", cacheErr))
			}

			status, statusErr := a.client.SessionStatus(ctx)
			if statusErr != nil {
				a.log.Warn("failed to fetch session status", logging.F("err", statusErr))
			}
			printSessions(sessions, status)
			return nil
		},
	}
}

func printSessions(sessions []types.Session, status map[string]types.SessionStatus) {
	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return
	}
	headerColor.Printf("%-30s %-30s %-8s %s\n", "ID", "TITLE", "STATUS", "UPDATED")
	for _, s := range sessions {
		state := status[s.ID]
		if state == "" {
			state = types.SessionStatusIdle
		}
		line := fmt.Sprintf("%-30s %-30s %-8s %s",
			truncate(s.ID, 30),
			truncate(s.Title, 30),
			state,
			formatMillis(s.Time.Updated))
		if state == types.SessionStatusBusy {
			busyColor.Println(line)
		} else {
			fmt.Println(line)
		}
	}
}

func sessionsNewCmd() *cobra.Command {
	var parentID string
	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			session, err := a.client.CreateSession(ctx, args[0], parentID)
			if err != nil {
				return err
			}
			fmt.Printf("created %s\n", session.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "Parent session id")
	return cmd
}

func sessionsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.client.UpdateSession(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("renamed %s\n", args[0])
			return nil
		},
	}
}

func sessionsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.client.DeleteSession(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

func formatMillis(millis int64) string {
	if millis == 0 {
		return "-"
	}
	return time.UnixMilli(millis).Local().Format("2006-01-02 15:04")
}
