package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Platform identifiers.
const (
	platformLinux  = "linux"
	platformDarwin = "darwin"
)

// Application directory name used across all platforms.
const appName = "qui"

// Config file name.
const configFileName = "config.toml"

// tokensDirName is the subdirectory of the data dir holding token files.
const tokensDirName = "tokens"

// DefaultConfigDir returns the platform-specific directory for config files.
// On Linux, respects XDG_CONFIG_HOME (defaults to ~/.config/qui).
// On macOS, uses ~/Library/Application Support/qui.
// Other platforms fall back to ~/.config/qui.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return xdgDir("XDG_CONFIG_HOME", home, ".config")
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".config", appName)
	}
}

// DefaultDataDir returns the platform-specific directory for application
// data (tokens).
// On Linux, respects XDG_DATA_HOME (defaults to ~/.local/share/qui).
// On macOS, config and data share ~/Library/Application Support/qui.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case platformLinux:
		return xdgDir("XDG_DATA_HOME", home, ".local", "share")
	case platformDarwin:
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		return filepath.Join(home, ".local", "share", appName)
	}
}

// xdgDir returns $env/qui when env is set, else home/fallback.../qui.
func xdgDir(env, home string, fallback ...string) string {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appName)
	}

	parts := append([]string{home}, fallback...)

	return filepath.Join(append(parts, appName)...)
}

// DefaultConfigPath returns the full path to the default config file.
// This is used as the fallback when neither QUI_CONFIG nor --config is
// specified.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, configFileName)
}

// TokenPath returns the token file for a server: one file per server host,
// so switching --server never reuses another server's token.
func TokenPath(serverURL string) (string, error) {
	host, err := tokenFileStem(serverURL)
	if err != nil {
		return "", err
	}

	dir := DefaultDataDir()
	if dir == "" {
		return "", errors.New("config: cannot determine data directory (no home directory)")
	}

	return filepath.Join(dir, tokensDirName, host+".json"), nil
}

// tokenFileStem derives a filesystem-safe name from the server URL's host.
func tokenFileStem(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("config: parsing server_url: %w", err)
	}

	if u.Host == "" {
		return "", fmt.Errorf("config: server_url %q has no host", serverURL)
	}

	return strings.ReplaceAll(strings.ToLower(u.Host), ":", "_"), nil
}
