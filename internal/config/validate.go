package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"
)

// Validation range constants.
const (
	minPort           = 1
	maxPort           = 65535
	minRequestTimeout = 1 * time.Second
	maxPaceDelay      = 10 * time.Second
)

// validLogLevels are the accepted log_level values.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateServer(&cfg.ServerConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)
	errs = append(errs, validateNetwork(&cfg.NetworkConfig)...)
	errs = append(errs, validateBatch(&cfg.BatchConfig)...)

	return errors.Join(errs...)
}

func validateServer(s *ServerConfig) []error {
	var errs []error

	u, err := url.Parse(s.ServerURL)

	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("server_url: %w", err))
	case u.Scheme != "https" && u.Scheme != "http":
		errs = append(errs, fmt.Errorf("server_url: scheme must be http or https, got %q", s.ServerURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("server_url: missing host in %q", s.ServerURL))
	}

	if s.ClientID == "" {
		errs = append(errs, errors.New("client_id: must not be empty"))
	}

	if s.RedirectPort < minPort || s.RedirectPort > maxPort {
		errs = append(errs, fmt.Errorf("redirect_port: must be between %d and %d, got %d",
			minPort, maxPort, s.RedirectPort))
	}

	return errs
}

func validateLogging(l *LoggingConfig) []error {
	if !slices.Contains(validLogLevels, l.LogLevel) {
		return []error{fmt.Errorf("log_level: must be one of %v, got %q", validLogLevels, l.LogLevel)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	d, err := time.ParseDuration(n.RequestTimeout)
	if err != nil {
		return []error{fmt.Errorf("request_timeout: invalid duration %q", n.RequestTimeout)}
	}

	if d < minRequestTimeout {
		return []error{fmt.Errorf("request_timeout: must be at least %s, got %s", minRequestTimeout, d)}
	}

	return nil
}

func validateBatch(b *BatchConfig) []error {
	var errs []error

	if b.PaceEvery < 0 {
		errs = append(errs, fmt.Errorf("pace_every: must be >= 0 (0 disables pacing), got %d", b.PaceEvery))
	}

	d, err := time.ParseDuration(b.PaceDelay)

	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("pace_delay: invalid duration %q", b.PaceDelay))
	case d < 0 || d > maxPaceDelay:
		errs = append(errs, fmt.Errorf("pace_delay: must be between 0s and %s, got %s", maxPaceDelay, d))
	}

	return errs
}
