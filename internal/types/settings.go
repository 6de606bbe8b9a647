package types

import (
	"errors"
	"net/url"
	"strings"
)

type ServerConfig struct {
	BaseURL   string `json:"baseUrl"`
	Directory string `json:"directory,omitempty"`
	IsLocal   bool   `json:"isLocal"`
}

// Validate checks the configuration before any network call is made.
func (c ServerConfig) Validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return errors.New("server base url is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return errors.New("server base url is not a valid url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("server base url must use http or https")
	}
	if u.Host == "" {
		return errors.New("server base url is missing a host")
	}
	return nil
}

type ThemeMode string

const (
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
	ThemeSystem ThemeMode = "system"
)

type FontSize string

const (
	FontSmall  FontSize = "small"
	FontMedium FontSize = "medium"
	FontLarge  FontSize = "large"
)

type Preferences struct {
	ThemeMode            ThemeMode `json:"themeMode"`
	FontSize             FontSize  `json:"fontSize"`
	AutoScrollToBottom   bool      `json:"autoScrollToBottom"`
	ShowTimestamps       bool      `json:"showMessageTimestamps"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		ThemeMode:            ThemeSystem,
		FontSize:             FontMedium,
		AutoScrollToBottom:   true,
		ShowTimestamps:       true,
		NotificationsEnabled: true,
	}
}
