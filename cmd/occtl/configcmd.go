package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"occtl/internal/client"
	"occtl/internal/types"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the saved server configuration",
	}
	cmd.AddCommand(configShowCmd(), configSetServerCmd(), configResetCmd(), configHistoryCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective server configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			server := types.ServerConfig{
				BaseURL:   a.cfg.ServerBaseURL(),
				Directory: a.cfg.Server.Directory,
				IsLocal:   a.cfg.Server.IsLocal,
			}
			source := "config file"
			if saved, ok, err := a.store.ServerConfig(cmd.Context()); err != nil {
				return err
			} else if ok {
				server = *saved
				source = "saved"
			}

			headerColor.Printf("server (%s)\n", source)
			fmt.Printf("  url:       %s\n", server.BaseURL)
			if server.Directory != "" {
				fmt.Printf("  directory: %s\n", server.Directory)
			}
			fmt.Printf("  local:     %v\n", server.IsLocal)
			return nil
		},
	}
}

func configSetServerCmd() *cobra.Command {
	var directory string
	var local bool
	var skipCheck bool
	cmd := &cobra.Command{
		Use:   "set-server <url>",
		Short: "Save a server configuration, verifying it is reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			server := types.ServerConfig{
				BaseURL:   args[0],
				Directory: directory,
				IsLocal:   local,
			}
			if err := server.Validate(); err != nil {
				return err
			}
			if !skipCheck {
				probe, err := client.New(server, a.log)
				if err != nil {
					return err
				}
				if err := probe.TestConnection(cmd.Context()); err != nil {
					return fmt.Errorf("server check failed (use --skip-check to save anyway): %w", err)
				}
			}
			if err := a.store.SaveServerConfig(cmd.Context(), server); err != nil {
				return err
			}
			okColor.Printf("saved server %s\n", server.BaseURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&directory, "directory", "", "Project directory the server should operate in")
	cmd.Flags().BoolVar(&local, "local", false, "Mark the server as running on this machine")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "Save without testing the connection")
	return cmd
}

func configResetCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the saved server configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			if all {
				if err := a.store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("cleared server config, preferences, permission history and session cache")
				return nil
			}
			if err := a.store.DeleteServerConfig(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("removed saved server config")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also clear preferences, permission history and cached sessions")
	return cmd
}

func configHistoryCmd() *cobra.Command {
	var session string
	var clear bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the persisted permission decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			if clear {
				if err := a.store.ClearDecisions(cmd.Context()); err != nil {
					return err
				}
				fmt.Println("cleared permission history")
				return nil
			}

			var decisions []types.PermissionDecision
			if session != "" {
				decisions, err = a.store.SessionDecisions(cmd.Context(), session)
			} else {
				decisions, err = a.store.ListDecisions(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(decisions) == 0 {
				fmt.Println("no recorded decisions")
				return nil
			}
			headerColor.Printf("%-26s  %-10s  %-8s  %s\n", "SESSION", "TYPE", "RESPONSE", "WHEN")
			for _, d := range decisions {
				fmt.Printf("%-26s  %-10s  %-8s  %s\n",
					truncate(d.SessionID, 26), d.Type, d.Response, formatMillis(d.Timestamp))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "Only show decisions for this session")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete the recorded decisions")
	return cmd
}
