// Package config handles the configuration directory, settings file and environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "learnsphere"

	// TokenFile holds the session token.
	TokenFile = "token.json"

	// SettingsFile holds user preferences (theme, API URL, focus length).
	SettingsFile = "settings.json"

	// OAuthClientFile is the Google OAuth client used by gconnect/export.
	OAuthClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google Tasks token.
	GoogleTokenFile = "google_token.json"

	// EnvPrefix prefixes every environment override, e.g. LEARNSPHERE_API_URL.
	EnvPrefix = "LEARNSPHERE"

	DefaultAPIURL       = "http://localhost:5000"
	DefaultFocusMinutes = 25

	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings keys.
const (
	KeyAPIURL         = "api_url"
	KeyTheme          = "theme"
	KeyFocusMinutes   = "focus_minutes"
	KeyRequestTimeout = "request_timeout"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIURL is the base URL of the LearnSphere API, without trailing slash.
	APIURL string

	// Theme is "dark" or "light".
	Theme string

	// FocusMinutes is the default focus-timer length.
	FocusMinutes int

	// RequestTimeout bounds each API call. Zero means no timeout.
	RequestTimeout time.Duration

	settings *viper.Viper
}

// New creates a Config for configDir, reading .env, the settings file and
// LEARNSPHERE_* environment overrides.
// If configDir is empty, uses XDG_CONFIG_HOME/learnsphere or $HOME/.config/learnsphere.
func New(configDir string) (*Config, error) {
	_ = godotenv.Load(".env")

	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, SettingsFile))
	v.SetConfigType("json")
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyTheme, ThemeDark)
	v.SetDefault(KeyFocusMinutes, DefaultFocusMinutes)
	v.SetDefault(KeyRequestTimeout, "0s")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}

	cfg := &Config{Dir: dir, settings: v}
	cfg.apply()
	return cfg, nil
}

func (c *Config) apply() {
	c.APIURL = strings.TrimRight(c.settings.GetString(KeyAPIURL), "/")
	c.Theme = normalizeTheme(c.settings.GetString(KeyTheme))
	c.FocusMinutes = c.settings.GetInt(KeyFocusMinutes)
	if c.FocusMinutes < 1 {
		c.FocusMinutes = DefaultFocusMinutes
	}
	c.RequestTimeout = c.settings.GetDuration(KeyRequestTimeout)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// GoogleTokenPath returns the path to the stored Google Tasks token.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory with mode 0700 if it doesn't exist.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the Google OAuth client file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasGoogleToken checks if a Google Tasks token has been stored.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}

// SetTheme persists the theme preference to the settings file. Only the
// file's own keys and the theme are written; defaults and environment
// overrides stay out of it.
func (c *Config) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("invalid theme: %s (want dark or light)", theme)
	}
	if err := c.EnsureDir(); err != nil {
		return err
	}

	file := viper.New()
	file.SetConfigFile(c.SettingsPath())
	file.SetConfigType("json")
	if err := file.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	}
	file.Set(KeyTheme, theme)
	if err := file.WriteConfigAs(c.SettingsPath()); err != nil {
		return fmt.Errorf("failed to write %s: %w", SettingsFile, err)
	}

	if c.settings != nil {
		c.settings.Set(KeyTheme, theme)
	}
	c.Theme = theme
	return nil
}

func normalizeTheme(theme string) string {
	if strings.EqualFold(strings.TrimSpace(theme), ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}
