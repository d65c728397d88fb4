package tokenfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken: "access-123",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func tokenPath(t *testing.T) string {
	t.Helper()

	return filepath.Join(t.TempDir(), "token.json")
}

func TestLoad_FileNotFound(t *testing.T) {
	tok, meta, err := Load("/nonexistent/path/token.json")
	assert.Nil(t, tok)
	assert.Nil(t, meta)
	assert.NoError(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := tokenPath(t)

	expiry := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	original := &oauth2.Token{
		AccessToken:  "access-123",
		RefreshToken: "refresh-456",
		TokenType:    "Bearer",
		Expiry:       expiry,
	}
	meta := map[string]string{MetaUserName: "alice", MetaServerURL: "https://q.example.com/api/v3"}

	require.NoError(t, Save(path, original, meta))

	tok, loadedMeta, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "access-123", tok.AccessToken)
	assert.Equal(t, "refresh-456", tok.RefreshToken)
	assert.True(t, tok.Expiry.Equal(expiry))
	assert.Equal(t, meta, loadedMeta)
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"invalid json", `{not json}`, "decoding"},
		{"bare token without wrapper", `{"access_token":"old"}`, "missing token field"},
		{"empty credentials", `{"token":{"token_type":"Bearer"}}`, "empty credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tokenPath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			tok, meta, err := Load(path)
			assert.Nil(t, tok)
			assert.Nil(t, meta)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_NilMeta(t *testing.T) {
	path := tokenPath(t)
	require.NoError(t, Save(path, testToken(), nil))

	tok, meta, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, tok)
	assert.Nil(t, meta)
}

func TestReadMeta(t *testing.T) {
	meta, err := ReadMeta("/nonexistent/path/token.json")
	assert.Nil(t, meta)
	assert.NoError(t, err)

	path := tokenPath(t)
	require.NoError(t, Save(path, testToken(), map[string]string{MetaUserID: "u-1"}))

	meta, err = ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, "u-1", meta[MetaUserID])
}

func TestSave_CreatesDirectoryWithOwnerOnlyPerms(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "tokens", "nested", "token.json")

	require.NoError(t, Save(nested, testToken(), nil))

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePerms), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(DirPerms), dirInfo.Mode().Perm())
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	path := tokenPath(t)
	require.NoError(t, Save(path, testToken(), nil))
	require.NoError(t, Save(path, testToken(), nil))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token.json", entries[0].Name())
}

func TestSave_NilToken(t *testing.T) {
	err := Save(tokenPath(t), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to save nil token")
}

func TestLoadAndMergeMeta_MergesKeys(t *testing.T) {
	path := tokenPath(t)
	require.NoError(t, Save(path, testToken(), map[string]string{MetaUserName: "old", MetaUserID: "u-1"}))

	require.NoError(t, LoadAndMergeMeta(path, map[string]string{
		MetaUserName:  "new",
		MetaServerURL: "https://q.example.com/api/v3",
	}))

	meta, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, "new", meta[MetaUserName])
	assert.Equal(t, "u-1", meta[MetaUserID])
	assert.Equal(t, "https://q.example.com/api/v3", meta[MetaServerURL])
}

func TestLoadAndMergeMeta_NilExistingMeta(t *testing.T) {
	path := tokenPath(t)
	require.NoError(t, Save(path, testToken(), nil))

	require.NoError(t, LoadAndMergeMeta(path, map[string]string{"key": "value"}))

	meta, err := ReadMeta(path)
	require.NoError(t, err)
	assert.Equal(t, "value", meta["key"])
}

func TestLoadAndMergeMeta_FileNotFound(t *testing.T) {
	err := LoadAndMergeMeta("/nonexistent/path/token.json", map[string]string{"k": "v"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token file")
}
