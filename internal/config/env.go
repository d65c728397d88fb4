package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "QUI_CONFIG"
	EnvServerURL = "QUI_SERVER_URL"
	EnvClientID  = "QUI_CLIENT_ID"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // QUI_CONFIG: override config file path
	ServerURL  string // QUI_SERVER_URL: traQ API root
	ClientID   string // QUI_CLIENT_ID: OAuth2 client ID
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		ServerURL:  os.Getenv(EnvServerURL),
		ClientID:   os.Getenv(EnvClientID),
	}
}
