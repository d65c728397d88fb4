package config

// Default values for configuration options. These represent the "layer 0"
// of the four-layer override chain and point at the traP development
// server with its public qui client registration.
const (
	defaultServerURL      = "https://traq-s-dev.tokyotech.org/api/v3"
	defaultClientID       = "xIwrarN2fZn4ikXBscU8YdA8ZcGGOQD2CczY"
	defaultRedirectPort   = 8080
	defaultLogLevel       = "info"
	defaultRequestTimeout = "30s"
	defaultPaceEvery      = 5
	defaultPaceDelay      = "100ms"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		ServerConfig: ServerConfig{
			ServerURL:    defaultServerURL,
			ClientID:     defaultClientID,
			RedirectPort: defaultRedirectPort,
		},
		LoggingConfig: LoggingConfig{
			LogLevel: defaultLogLevel,
		},
		NetworkConfig: NetworkConfig{
			RequestTimeout: defaultRequestTimeout,
		},
		BatchConfig: BatchConfig{
			PaceEvery: defaultPaceEvery,
			PaceDelay: defaultPaceDelay,
		},
	}
}
