// Package testutil provides environment helpers for the e2e tests, which
// run the built qui binary against a live traQ server.
package testutil

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables read by the e2e suite.
const (
	EnvTestServer     = "QUI_TEST_SERVER"
	EnvTestChannel    = "QUI_TEST_CHANNEL"
	EnvAllowedServers = "QUI_ALLOWED_TEST_SERVERS"
)

// LoadDotEnv reads KEY=VALUE pairs from a .env file at the given path.
// A missing file is not an error. Variables already set win over the file.
func LoadDotEnv(envPath string) {
	f, err := os.Open(envPath)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), "\"'")

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

// AllowedServer reports whether serverURL is listed in allowlist, a comma
// separated list of server URLs.
func AllowedServer(serverURL, allowlist string) bool {
	for _, a := range strings.Split(allowlist, ",") {
		if a = strings.TrimSpace(a); a != "" && strings.TrimRight(a, "/") == strings.TrimRight(serverURL, "/") {
			return true
		}
	}

	return false
}

// ValidateAllowlist exits the process unless QUI_TEST_SERVER is set and
// listed in QUI_ALLOWED_TEST_SERVERS. The e2e suite changes subscription
// levels, so it must never run against an arbitrary server.
func ValidateAllowlist() string {
	server := os.Getenv(EnvTestServer)
	if server == "" {
		fmt.Fprintf(os.Stderr, "FATAL: %s not set\n", EnvTestServer)
		os.Exit(1)
	}

	allowlist := os.Getenv(EnvAllowedServers)
	if !AllowedServer(server, allowlist) {
		fmt.Fprintf(os.Stderr, "FATAL: %s=%q is not in %s=%q\n",
			EnvTestServer, server, EnvAllowedServers, allowlist)
		os.Exit(1)
	}

	return server
}

// FindModuleRoot walks up from the current directory to find go.mod.
// Returns fallback if the root is not found.
func FindModuleRoot(fallback string) string {
	dir, err := os.Getwd()
	if err != nil {
		return fallback
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return fallback
		}

		dir = parent
	}
}

// TokenFileName returns the token file name qui uses for serverURL:
// the lowercased host with ':' replaced by '_', plus ".json".
func TokenFileName(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}

	if u.Host == "" {
		return "", fmt.Errorf("server URL %q has no host", serverURL)
	}

	return strings.ReplaceAll(strings.ToLower(u.Host), ":", "_") + ".json", nil
}

// CopyFile copies src to dst with the given permissions.
func CopyFile(src, dst string, perm os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return err
	}

	return os.WriteFile(dst, data, perm)
}
