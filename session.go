package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tonimelisma/qui/internal/config"
	"github.com/tonimelisma/qui/internal/traq"
)

// userAgent returns the configured User-Agent or qui/<version>.
func userAgent(cfg *config.Resolved) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}

	return "qui/" + version
}

// oauthOptions maps the resolved config onto the OAuth2 client settings.
// The redirect URI is left to the server, which uses the one registered for
// the client.
func oauthOptions(cfg *config.Resolved) traq.OAuthOptions {
	return traq.OAuthOptions{
		ServerURL:    cfg.ServerURL,
		ClientID:     cfg.ClientID,
		RedirectPort: cfg.RedirectPort,
	}
}

// newTraqClient loads the saved token for the configured server and returns
// an authenticated API client.
func newTraqClient(ctx context.Context, cc *CLIContext) (*traq.Client, error) {
	ts, err := traq.TokenSourceFromPath(ctx, oauthOptions(cc.Cfg), cc.Cfg.TokenPath, cc.Logger)
	if err != nil {
		if errors.Is(err, traq.ErrNotLoggedIn) {
			return nil, fmt.Errorf("not logged in to %s: run 'qui login' first", cc.Cfg.ServerURL)
		}

		return nil, err
	}

	return traq.NewClient(cc.Cfg.ServerURL, newHTTPClient(cc.Cfg), ts, cc.Logger, userAgent(cc.Cfg)), nil
}
