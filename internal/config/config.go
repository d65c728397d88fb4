// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for qui. It supports a four-layer
// override chain (defaults -> config file -> environment -> CLI flags).
// All keys are flat top-level keys; the sub-structs only group them in Go.
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
// Embedded structs are flattened by the TOML decoder, so every field is a
// top-level key.
type Config struct {
	ServerConfig
	LoggingConfig
	NetworkConfig
	BatchConfig
}

// ServerConfig identifies the traQ server and the OAuth2 client registered
// on it.
type ServerConfig struct {
	ServerURL    string `toml:"server_url"`
	ClientID     string `toml:"client_id"`
	RedirectPort int    `toml:"redirect_port"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	RequestTimeout string `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// BatchConfig controls pacing of subscription update batches. A pace_every
// of 0 disables pacing.
type BatchConfig struct {
	PaceEvery int    `toml:"pace_every"`
	PaceDelay string `toml:"pace_delay"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Empty strings mean "not specified".
type CLIOverrides struct {
	ConfigPath string // --config
	ServerURL  string // --server
}

// Resolved is the effective configuration after all override layers, with
// durations parsed and derived paths filled in. Commands read only this.
type Resolved struct {
	ConfigPath     string        `json:"config_path"`
	TokenPath      string        `json:"token_path"`
	ServerURL      string        `json:"server_url"`
	ClientID       string        `json:"client_id"`
	RedirectPort   int           `json:"redirect_port"`
	LogLevel       string        `json:"log_level"`
	RequestTimeout time.Duration `json:"request_timeout"`
	UserAgent      string        `json:"user_agent,omitempty"`
	PaceEvery      int           `json:"pace_every"`
	PaceDelay      time.Duration `json:"pace_delay"`
}
