package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/qui/internal/config"
)

// appendLine appends one line to a text file.
func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func TestConfigShow_Text(t *testing.T) {
	isolateEnv(t)

	stdout, _, err := runCLI(t, "", "--server", "https://q.example.com/api/v3", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, `server_url      = "https://q.example.com/api/v3"`)
	assert.Contains(t, stdout, "pace_every      = 5")
	assert.Contains(t, stdout, "q.example.com.json")
}

func TestConfigShow_JSON(t *testing.T) {
	isolateEnv(t)
	t.Setenv(config.EnvClientID, "env-client")

	stdout, _, err := runCLI(t, "", "config", "show", "--json")
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "env-client", out["client_id"])
	assert.InDelta(t, 8080, out["redirect_port"], 0)
}

func TestConfigInit(t *testing.T) {
	home := isolateEnv(t)

	_, stderr, err := runCLI(t, "", "config", "init")
	require.NoError(t, err)

	path := filepath.Join(home, "config", "qui", "config.toml")
	if _, statErr := os.Stat(path); statErr != nil {
		// Non-Linux platforms ignore XDG_CONFIG_HOME.
		path = config.DefaultConfigPath()
	}

	assert.FileExists(t, path)
	assert.Contains(t, stderr, "Wrote ")

	_, _, err = runCLI(t, "", "config", "init")
	require.ErrorIs(t, err, config.ErrConfigExists)
}

func TestConfigInit_ExplicitPathSkipsBrokenConfig(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "qui.toml")

	// A bad env override would fail resolution; init must not resolve.
	t.Setenv(config.EnvServerURL, "not-a-url")

	_, _, err := runCLI(t, "", "--config", path, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestResolveConfigPath(t *testing.T) {
	isolateEnv(t)

	assert.Equal(t, "/flag.toml", resolveConfigPath("/flag.toml", config.EnvOverrides{ConfigPath: "/env.toml"}))
	assert.Equal(t, "/env.toml", resolveConfigPath("", config.EnvOverrides{ConfigPath: "/env.toml"}))
	assert.Equal(t, config.DefaultConfigPath(), resolveConfigPath("", config.EnvOverrides{}))
}
