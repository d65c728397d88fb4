package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// configFilePermissions is the standard permission mode for config files.
// Owner read/write, group and others read-only.
const configFilePermissions = 0o644

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o755

// ErrConfigExists is returned by WriteTemplate when a config file is
// already present. User files are never overwritten.
var ErrConfigExists = errors.New("config: config file already exists")

// configTemplate is the config file content written by "config init".
// Every setting is present as a commented-out default so users can
// discover every option without reading docs.
const configTemplate = `# qui configuration
# Uncomment and modify to override defaults.

# traQ API root. The OAuth2 endpoints live under it.
# server_url = "` + defaultServerURL + `"

# OAuth2 client registered on the server. Its redirect URI must point at
# http://localhost:<redirect_port>/.
# client_id = "` + defaultClientID + `"
# redirect_port = 8080

# Log verbosity: debug, info, warn, error
# log_level = "info"

# Timeout for a single HTTP request
# request_timeout = "30s"

# HTTP User-Agent (default: qui/<version>)
# user_agent = ""

# notify: pause for pace_delay after the 1st submitted request and every
# pace_every-th one after it (1st, 6th, 11th, ... with the defaults).
# pace_every = 0 disables pacing.
# pace_every = 5
# pace_delay = "100ms"
`

// WriteTemplate writes the commented default config to path. It fails with
// ErrConfigExists instead of overwriting an existing file.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	slog.Info("creating config file", "path", path)

	return atomicWriteFile(path, []byte(configTemplate))
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it over path, creating parent directories as needed.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	// Clean up the temp file on any error path.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
