package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTemplate_CreatesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "qui", "config.toml")

	require.NoError(t, WriteTemplate(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFilePermissions), info.Mode().Perm())

	// Everything is commented out, so the template loads as pure defaults.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteTemplate_MentionsEveryKey(t *testing.T) {
	for _, key := range knownKeysList {
		assert.Contains(t, configTemplate, "# "+key+" = ", "template missing %s", key)
	}
}

func TestWriteTemplate_RefusesToOverwrite(t *testing.T) {
	path := writeTestConfig(t, `log_level = "debug"`)

	err := WriteTemplate(path)
	require.ErrorIs(t, err, ErrConfigExists)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, `log_level = "debug"`, string(data))
}

func TestAtomicWriteFile_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, atomicWriteFile(path, []byte("a = 1\n")))
	require.NoError(t, atomicWriteFile(path, []byte("a = 2\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
