package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"occtl/internal/types"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect and change client preferences",
	}
	cmd.AddCommand(prefsShowCmd(), prefsSetCmd(), prefsResetCmd())
	return cmd
}

func prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			prefs, err := a.store.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("theme:         %s\n", prefs.ThemeMode)
			fmt.Printf("font-size:     %s\n", prefs.FontSize)
			fmt.Printf("auto-scroll:   %v\n", prefs.AutoScrollToBottom)
			fmt.Printf("timestamps:    %v\n", prefs.ShowTimestamps)
			fmt.Printf("notifications: %v\n", prefs.NotificationsEnabled)
			return nil
		},
	}
}

func prefsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one preference",
		Long: `Change one preference. Keys:

  theme          light, dark or system
  font-size      small, medium or large
  auto-scroll    true or false
  timestamps     true or false
  notifications  true or false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			key, value := args[0], args[1]
			apply, err := prefsSetter(key, value)
			if err != nil {
				return err
			}
			if _, err := a.store.UpdatePreferences(cmd.Context(), apply); err != nil {
				return err
			}
			okColor.Printf("set %s to %s\n", key, value)
			return nil
		},
	}
	return cmd
}

func prefsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore all preferences to their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newStoreOnlyApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.store.ResetPreferences(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("preferences reset to defaults")
			return nil
		},
	}
}

func prefsSetter(key, value string) (func(*types.Preferences), error) {
	switch key {
	case "theme":
		mode := types.ThemeMode(value)
		switch mode {
		case types.ThemeLight, types.ThemeDark, types.ThemeSystem:
		default:
			return nil, fmt.Errorf("invalid theme %q (want light, dark or system)", value)
		}
		return func(p *types.Preferences) { p.ThemeMode = mode }, nil
	case "font-size":
		size := types.FontSize(value)
		switch size {
		case types.FontSmall, types.FontMedium, types.FontLarge:
		default:
			return nil, fmt.Errorf("invalid font size %q (want small, medium or large)", value)
		}
		return func(p *types.Preferences) { p.FontSize = size }, nil
	case "auto-scroll", "timestamps", "notifications":
		var on bool
		switch value {
		case "true":
			on = true
		case "false":
		default:
			return nil, fmt.Errorf("invalid value %q for %s (want true or false)", value, key)
		}
		return func(p *types.Preferences) {
			switch key {
			case "auto-scroll":
				p.AutoScrollToBottom = on
			case "timestamps":
				p.ShowTimestamps = on
			case "notifications":
				p.NotificationsEnabled = on
			}
		}, nil
	default:
		return nil, fmt.Errorf("unknown preference %q", key)
	}
}
