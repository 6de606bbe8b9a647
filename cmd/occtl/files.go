package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse files on the server",
	}
	cmd.AddCommand(filesLsCmd(), filesCatCmd())
	return cmd
}

func filesLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List directory entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			entries, err := a.client.ListFiles(ctx, path)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("empty directory")
				return nil
			}
			for _, entry := range entries {
				name := entry.Name
				if entry.Directory {
					name += "/"
				}
				fmt.Println(name)
			}
			return nil
		},
	}
}

func filesCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print file content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			content, err := a.client.ReadFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Print(content.Content)
			return nil
		},
	}
}
