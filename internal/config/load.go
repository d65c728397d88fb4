package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values, so qui works without a
// config file.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	// 3. Apply env overrides
	if env.ServerURL != "" {
		cfg.ServerURL = env.ServerURL
	}

	if env.ClientID != "" {
		cfg.ClientID = env.ClientID
	}

	// 4. Apply CLI overrides
	if cli.ServerURL != "" {
		cfg.ServerURL = cli.ServerURL
	}

	// 5. Validate again: overrides bypass the file-level check.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolve(cfg, cfgPath)
}

// resolve converts a validated Config into its effective form.
func resolve(cfg *Config, cfgPath string) (*Resolved, error) {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("request_timeout: %w", err)
	}

	delay, err := time.ParseDuration(cfg.PaceDelay)
	if err != nil {
		return nil, fmt.Errorf("pace_delay: %w", err)
	}

	tokenPath, err := TokenPath(cfg.ServerURL)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		ConfigPath:     cfgPath,
		TokenPath:      tokenPath,
		ServerURL:      cfg.ServerURL,
		ClientID:       cfg.ClientID,
		RedirectPort:   cfg.RedirectPort,
		LogLevel:       cfg.LogLevel,
		RequestTimeout: timeout,
		UserAgent:      cfg.UserAgent,
		PaceEvery:      cfg.PaceEvery,
		PaceDelay:      delay,
	}, nil
}
