package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

// isolateHome points every platform directory lookup at a temp dir so tests
// never read the developer's real config or tokens.
func isolateHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))

	return home
}

func TestLoad_ValidFullConfig(t *testing.T) {
	path := writeTestConfig(t, `
server_url = "https://q.trap.jp/api/v3"
client_id = "my-client"
redirect_port = 9090
log_level = "debug"
request_timeout = "10s"
user_agent = "qui-test"
pace_every = 3
pace_delay = "250ms"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://q.trap.jp/api/v3", cfg.ServerURL)
	assert.Equal(t, "my-client", cfg.ClientID)
	assert.Equal(t, 9090, cfg.RedirectPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "10s", cfg.RequestTimeout)
	assert.Equal(t, "qui-test", cfg.UserAgent)
	assert.Equal(t, 3, cfg.PaceEvery)
	assert.Equal(t, "250ms", cfg.PaceDelay)
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	path := writeTestConfig(t, `log_level = "warn"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, defaultServerURL, cfg.ServerURL)
	assert.Equal(t, defaultClientID, cfg.ClientID)
	assert.Equal(t, defaultPaceEvery, cfg.PaceEvery)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeTestConfig(t, `server_url = `)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeTestConfig(t, `redirect_port = 0`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect_port")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestResolve_Defaults(t *testing.T) {
	isolateHome(t)

	r, err := Resolve(EnvOverrides{}, CLIOverrides{})
	require.NoError(t, err)

	assert.Equal(t, defaultServerURL, r.ServerURL)
	assert.Equal(t, defaultClientID, r.ClientID)
	assert.Equal(t, defaultRedirectPort, r.RedirectPort)
	assert.Equal(t, 30*time.Second, r.RequestTimeout)
	assert.Equal(t, 5, r.PaceEvery)
	assert.Equal(t, 100*time.Millisecond, r.PaceDelay)
	assert.Equal(t, DefaultConfigPath(), r.ConfigPath)
	assert.Equal(t, "traq-s-dev.tokyotech.org.json", filepath.Base(r.TokenPath))
}

func TestResolve_OverrideChain(t *testing.T) {
	isolateHome(t)

	path := writeTestConfig(t, `
server_url = "https://file.example.com/api/v3"
client_id = "file-client"
`)

	tests := []struct {
		name       string
		env        EnvOverrides
		cli        CLIOverrides
		wantServer string
		wantClient string
	}{
		{
			name:       "file only",
			env:        EnvOverrides{ConfigPath: path},
			wantServer: "https://file.example.com/api/v3",
			wantClient: "file-client",
		},
		{
			name:       "env beats file",
			env:        EnvOverrides{ConfigPath: path, ServerURL: "https://env.example.com/api/v3", ClientID: "env-client"},
			wantServer: "https://env.example.com/api/v3",
			wantClient: "env-client",
		},
		{
			name:       "cli beats env",
			env:        EnvOverrides{ConfigPath: path, ServerURL: "https://env.example.com/api/v3"},
			cli:        CLIOverrides{ServerURL: "https://cli.example.com/api/v3"},
			wantServer: "https://cli.example.com/api/v3",
			wantClient: "file-client",
		},
		{
			name:       "cli config path beats env config path",
			env:        EnvOverrides{ConfigPath: "/nonexistent/config.toml"},
			cli:        CLIOverrides{ConfigPath: path},
			wantServer: "https://file.example.com/api/v3",
			wantClient: "file-client",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve(tt.env, tt.cli)
			require.NoError(t, err)
			assert.Equal(t, tt.wantServer, r.ServerURL)
			assert.Equal(t, tt.wantClient, r.ClientID)
		})
	}
}

func TestResolve_InvalidOverride(t *testing.T) {
	isolateHome(t)

	_, err := Resolve(EnvOverrides{}, CLIOverrides{ServerURL: "ftp://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server_url")
}

func TestResolve_TokenPathFollowsServer(t *testing.T) {
	home := isolateHome(t)

	r, err := Resolve(EnvOverrides{}, CLIOverrides{ServerURL: "http://localhost:3000/api/v3"})
	require.NoError(t, err)

	assert.Equal(t, "localhost_3000.json", filepath.Base(r.TokenPath))
	assert.Equal(t, "tokens", filepath.Base(filepath.Dir(r.TokenPath)))
	assert.Contains(t, r.TokenPath, home)
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/qui.toml")
	t.Setenv(EnvServerURL, "https://q.example.com/api/v3")
	t.Setenv(EnvClientID, "cid")

	assert.Equal(t, EnvOverrides{
		ConfigPath: "/tmp/qui.toml",
		ServerURL:  "https://q.example.com/api/v3",
		ClientID:   "cid",
	}, ReadEnvOverrides())
}
