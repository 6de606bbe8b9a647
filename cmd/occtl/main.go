// Package main provides the occtl CLI: a terminal client for an OpenCode
// agent server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "occtl",
		Short: "Client for an OpenCode agent server",
		Long: `occtl talks to a running OpenCode agent server over HTTP and SSE.

It manages sessions and messages, browses server-side files, follows the
live event stream, and drives the permission approval workflow with
remembered decisions.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		sessionsCmd(),
		sendCmd(),
		filesCmd(),
		watchCmd(),
		configCmd(),
		prefsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
